package routes

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/config"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

const docsIndexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    body { margin: 0; font-family: Georgia, "Times New Roman", serif; color: #132019; background: #f6f7f4; }
    main { max-width: 1120px; margin: 0 auto; padding: 48px 20px 64px; }
    .panel { background: #ffffff; border: 1px solid #d8ddd6; border-radius: 18px; padding: 24px; margin-bottom: 20px; }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: left; padding: 8px; border-bottom: 1px solid #d8ddd6; }
    code { font-size: 0.9em; }
    .method { font-weight: bold; text-transform: uppercase; color: #1f6f4a; }
    pre { background: #0f172a; color: #e2e8f0; padding: 16px; border-radius: 12px; overflow: auto; }
  </style>
</head>
<body>
  <main>
    <section class="panel">
      <h1>{{ .Title }}</h1>
      <p>Version {{ .Version }}. The raw spec is served at <a href="/docs/openapi.yaml">/docs/openapi.yaml</a>. Loaded {{ .LoadedAt }}.</p>
    </section>
    <section class="panel">
      <h2>Endpoints</h2>
      <table>
        <tr><th>Method</th><th>Path</th><th>Tag</th><th>Summary</th></tr>
        {{ range .Operations }}<tr><td class="method">{{ .Method }}</td><td><code>{{ .Path }}</code></td><td>{{ .Tag }}</td><td>{{ .Summary }}</td></tr>
        {{ end }}
      </table>
    </section>
    <section class="panel">
      <h2>OpenAPI YAML</h2>
      <pre>{{ .Spec }}</pre>
    </section>
  </main>
</body>
</html>
`

type openAPIDocument struct {
	Info struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]struct {
		Tags    []string `yaml:"tags"`
		Summary string   `yaml:"summary"`
	} `yaml:"paths"`
}

type docsOperation struct {
	Method  string
	Path    string
	Tag     string
	Summary string
}

type docsPageData struct {
	Title      string
	Version    string
	LoadedAt   string
	Operations []docsOperation
	Spec       string
}

var methodOrder = map[string]int{"get": 0, "post": 1, "put": 2, "patch": 3, "delete": 4}

// operations flattens the OpenAPI path table, ordered by path then method.
func operations(spec []byte) (openAPIDocument, []docsOperation, error) {
	var doc openAPIDocument
	if err := yaml.Unmarshal(spec, &doc); err != nil {
		return doc, nil, err
	}

	var ops []docsOperation
	for path, methods := range doc.Paths {
		for method, op := range methods {
			tag := ""
			if len(op.Tags) > 0 {
				tag = op.Tags[0]
			}
			ops = append(ops, docsOperation{Method: strings.ToLower(method), Path: path, Tag: tag, Summary: op.Summary})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return methodOrder[ops[i].Method] < methodOrder[ops[j].Method]
	})
	return doc, ops, nil
}

func registerDocsRoutes(app fiber.Router, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	doc, ops, err := operations(openAPISpec)
	if err != nil {
		return fmt.Errorf("parse openapi spec: %w", err)
	}

	indexTemplate, err := template.New("docs-index").Parse(docsIndexHTML)
	if err != nil {
		return fmt.Errorf("parse docs template: %w", err)
	}

	pageData := docsPageData{
		Title:      doc.Info.Title,
		Version:    doc.Info.Version,
		LoadedAt:   time.Now().UTC().Format(time.RFC3339),
		Operations: ops,
		Spec:       string(openAPISpec),
	}

	indexHandler := func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, fiber.MIMETextHTMLCharsetUTF8)
		c.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; base-uri 'none'; form-action 'none'; frame-ancestors 'none'")

		var body bytes.Buffer
		if err := indexTemplate.Execute(&body, pageData); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render api docs")
		}
		return c.Status(fiber.StatusOK).Send(body.Bytes())
	}

	app.Get("/docs", indexHandler)
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, "application/yaml; charset=utf-8")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="openapi.yaml"`)
		return c.Status(fiber.StatusOK).Send(openAPISpec)
	})
	return nil
}

func applyDocsBaseHeaders(c *fiber.Ctx, contentType string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
