// Package seed loads the default tenants and the bootstrap admin.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed tenants.yaml
var defaultFile []byte

type Tenant struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Admin struct {
	Tenant string `yaml:"tenant"`
}

type File struct {
	Tenants []Tenant `yaml:"tenants"`
	Admin   Admin    `yaml:"admin"`
}

// Default returns the seed file compiled into the binary.
func Default() (*File, error) {
	return Parse(defaultFile)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if len(f.Tenants) == 0 {
		return errors.New("seed file lists no tenants")
	}
	seen := make(map[string]bool, len(f.Tenants))
	for i, t := range f.Tenants {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("tenant %d has no name", i)
		}
		if !validType(t.Type) {
			return fmt.Errorf("tenant %q has unknown type %q", name, t.Type)
		}
		if seen[name] {
			return fmt.Errorf("tenant %q is listed twice", name)
		}
		seen[name] = true
		f.Tenants[i].Name = name
	}
	if f.Admin.Tenant != "" && !seen[f.Admin.Tenant] {
		return fmt.Errorf("admin tenant %q is not in the tenant list", f.Admin.Tenant)
	}
	return nil
}

func validType(t string) bool {
	for _, allowed := range models.TenantTypes {
		if t == allowed {
			return true
		}
	}
	return false
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AdminCredentials is the bootstrap admin; an empty password skips it.
type AdminCredentials struct {
	Email    string
	Password string
}

type Result struct {
	TenantsCreated int
	AdminCreated   bool
}

// Run applies f in one transaction. It is safe to run repeatedly.
func Run(ctx context.Context, db txBeginner, hasher *auth.PasswordHasher, f *File, creds AdminCredentials) (Result, error) {
	log := logger.Named("seed")
	var res Result

	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		tenants := repository.NewTenantRepository(tx)
		byName := make(map[string]*models.Tenant, len(f.Tenants))
		for _, t := range f.Tenants {
			tenant, created, err := tenants.EnsureByName(ctx, t.Name, t.Type)
			if err != nil {
				return fmt.Errorf("ensure tenant %q: %w", t.Name, err)
			}
			byName[t.Name] = tenant
			if !created {
				continue
			}
			if _, err := tenants.CreateConfig(ctx, tenant.ID); err != nil {
				return fmt.Errorf("create config for %q: %w", t.Name, err)
			}
			res.TenantsCreated++
			log.Info("tenant created", zap.String("name", t.Name), zap.String("type", t.Type))
		}

		users := repository.NewUserRepository(tx)
		exists, err := users.AnyAdmin(ctx)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if creds.Password == "" {
			log.Warn("no admin exists and DEFAULT_ADMIN_PASSWORD is empty; skipping bootstrap admin")
			return nil
		}

		home := byName[f.Admin.Tenant]
		if home == nil {
			home = byName[f.Tenants[0].Name]
		}
		hash, err := hasher.Hash(creds.Password)
		if err != nil {
			return err
		}
		admin := &models.User{
			TenantID:     home.ID,
			Email:        strings.ToLower(strings.TrimSpace(creds.Email)),
			PasswordHash: hash,
			IsAdmin:      true,
			IsActive:     true,
		}
		if err := users.CreateUser(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		if _, err := repository.NewUserProfileRepository(tx).CreateDefault(ctx, admin.ID); err != nil {
			return err
		}
		if _, err := repository.NewNotificationRepository(tx).CreateDefault(ctx, admin.ID); err != nil {
			return err
		}
		res.AdminCreated = true
		log.Info("bootstrap admin created", logger.UserID(admin.ID), logger.TenantID(home.ID))
		return nil
	})
	return res, err
}
