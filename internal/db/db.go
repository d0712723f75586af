package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/types"
	"github.com/finbridge/finlit-backend/internal/utils"
)

// Service owns the shared gorm handle. Constructed once per process and
// passed down to every repo; components never open their own connections.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the store selected by DB_DRIVER: "sqlite" (default, one local
// file shared by all four agent processes) or "postgres".
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := utils.GetEnv("DB_DRIVER", "sqlite", log)

	var conn gorm.Dialector
	switch driver {
	case "postgres":
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "finlit", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		conn = postgres.Open(dsn)
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "financial_literacy.db", log)
		conn = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (want sqlite or postgres)", driver)
	}

	serviceLog.Info("Connecting to store", "driver", driver)
	gormDB, err := gorm.Open(conn, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to store", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to connect to %s store: %w", driver, err)
	}

	return &Service{db: gormDB, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Assessment{},
		&types.LearningPath{},
		&types.ProgressEntry{},
		&types.HandoffMessage{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
