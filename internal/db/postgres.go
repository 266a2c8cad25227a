package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/steve0joo/storymind/internal/pkg/config"
	"github.com/steve0joo/storymind/internal/pkg/logger"
	"github.com/steve0joo/storymind/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("loading environment variables...")
	postgresHost := config.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := config.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := config.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := config.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := config.GetEnv("POSTGRES_NAME", "storymind", log)
	log.Debug("environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("connecting to postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}
	log.Info("uuid-ossp extension enabled")

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.SourceDocument{},
		&types.CanonicalCharacter{},
		&types.GeneratedImage{},
	)
	if err != nil {
		s.log.Error("auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
