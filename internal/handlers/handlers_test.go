package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/middleware"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

type envelope struct {
	Success    bool              `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Message    string            `json:"message"`
	Errors     []json.RawMessage `json:"errors"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
}

func member(id int64) *models.User {
	return &models.User{ID: id, TenantID: 1, Email: "member@example.com", IsActive: true}
}

func admin(id int64) *models.User {
	user := member(id)
	user.IsAdmin = true
	return user
}

// newTestApp stores actor the way AuthRequired does. A nil actor leaves the
// request anonymous.
func newTestApp(actor *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if actor != nil {
			c.Locals(middleware.LocalUser, actor)
			c.Locals(middleware.LocalUserID, actor.ID)
		}
		return c.Next()
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return decode(t, app, req)
}

func decode(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return resp.StatusCode, out
}

func fieldNames(t *testing.T, env envelope) []string {
	t.Helper()

	names := make([]string, 0, len(env.Errors))
	for _, raw := range env.Errors {
		var field struct {
			Field string `json:"field"`
		}
		if err := json.Unmarshal(raw, &field); err != nil {
			t.Fatalf("Unmarshal field error: %v", err)
		}
		names = append(names, field.Field)
	}
	return names
}

func hasField(names []string, want string) bool {
	for _, name := range names {
		if name == want {
			return true
		}
	}
	return false
}
