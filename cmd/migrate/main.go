package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/database"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliConfig is the subset of the server settings the migration tool reads.
type cliConfig struct {
	DBUrl                string `envconfig:"DB_URL" required:"true"`
	AppEnv               string `envconfig:"APP_ENV" default:"production"`
	LogLevel             string `envconfig:"LOG_LEVEL" default:"info"`
	DefaultAdminEmail    string `envconfig:"DEFAULT_ADMIN_EMAIL" default:"admin@fitnessapp.com"`
	DefaultAdminPassword string `envconfig:"DEFAULT_ADMIN_PASSWORD"`
	Argon2Memory         uint32 `envconfig:"ARGON2_MEMORY_KIB" default:"65536"`
	Argon2Time           uint32 `envconfig:"ARGON2_TIME" default:"3"`
	Argon2Parallelism    uint8  `envconfig:"ARGON2_PARALLELISM" default:"2"`
}

func loadCLIConfig() (*cliConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	var cfg cliConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel, ServiceName: "fittrack-migrate"})
	return &cfg, nil
}

func main() {
	defer logger.Sync()

	var (
		migrationsDir string
		steps         int
		seedFile      string
	)

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Database migrations and seed data for the fitness tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&migrationsDir, "dir", "", "migrations directory (searched upwards from the working directory when empty)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openMigrator(migrationsDir)
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			logger.L().Info("migration up successful")
			return nil
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := openMigrator(migrationsDir)
			if err != nil {
				return err
			}
			defer m.Close()
			if steps > 0 {
				err = m.Steps(-steps)
			} else {
				err = m.Down()
			}
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			logger.L().Info("migration down successful", zap.Int("steps", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")
	root.AddCommand(down)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default tenants and, when no admin exists, the bootstrap admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), seedFile)
		},
	}
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed YAML file (defaults to the built-in tenant list)")
	root.AddCommand(seedCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.L().Error("command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func openMigrator(dir string) (*migrate.Migrate, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir, err = findMigrationsDir()
		if err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return migrate.New("file://"+abs, cfg.DBUrl)
}

func runSeed(ctx context.Context, path string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	file, err := loadSeedFile(path)
	if err != nil {
		return err
	}

	db, err := database.ConnectDB(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	hasher := auth.NewPasswordHasher(auth.Params{
		Memory:      cfg.Argon2Memory,
		Time:        cfg.Argon2Time,
		Parallelism: cfg.Argon2Parallelism,
	})
	res, err := seed.Run(ctx, db, hasher, file, seed.AdminCredentials{
		Email:    cfg.DefaultAdminEmail,
		Password: cfg.DefaultAdminPassword,
	})
	if err != nil {
		return err
	}
	logger.L().Info("seed complete",
		zap.Int("tenants_created", res.TenantsCreated),
		zap.Bool("admin_created", res.AdminCreated),
	)
	return nil
}

func loadSeedFile(path string) (*seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return seed.Parse(data)
}

// findMigrationsDir looks for a migrations directory next to the working
// directory or the executable, walking a few parents up.
func findMigrationsDir() (string, error) {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		current := cwd
		for i := 0; i < 6; i++ {
			candidates = append(candidates, filepath.Join(current, "migrations"))
			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append(candidates,
			filepath.Join(exeDir, "migrations"),
			filepath.Join(exeDir, "..", "migrations"),
			filepath.Join(exeDir, "..", "..", "migrations"),
		)
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.New("migrations directory not found")
}
