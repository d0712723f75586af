package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/repos"
	"github.com/finbridge/finlit-backend/internal/types"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory sqlite database with the full schema.
// Each call gets its own database, so tests stay independent.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = gdb.AutoMigrate(
		&types.User{},
		&types.Assessment{},
		&types.LearningPath{},
		&types.ProgressEntry{},
		&types.HandoffMessage{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

// testEnv bundles the repos and router most service tests need.
type testEnv struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	assessmentRepo repos.AssessmentRepo
	pathRepo       repos.LearningPathRepo
	progressRepo   repos.ProgressRepo
	handoffRepo    repos.HandoffRepo
	statsRepo      repos.StatsRepo
	router         HandoffRouter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := newTestLogger(t)
	env := &testEnv{
		db:             gdb,
		log:            log,
		userRepo:       repos.NewUserRepo(gdb, log),
		assessmentRepo: repos.NewAssessmentRepo(gdb, log),
		pathRepo:       repos.NewLearningPathRepo(gdb, log),
		progressRepo:   repos.NewProgressRepo(gdb, log),
		handoffRepo:    repos.NewHandoffRepo(gdb, log),
		statsRepo:      repos.NewStatsRepo(gdb, log),
	}
	env.router = NewHandoffRouter(gdb, log, env.userRepo, env.assessmentRepo, env.handoffRepo, nil)
	return env
}

func (e *testEnv) assessmentService() AssessmentService {
	return NewAssessmentService(e.db, e.log, e.userRepo, e.assessmentRepo, e.statsRepo, e.router)
}

func (e *testEnv) planningService() PlanningService {
	return NewPlanningService(e.db, e.log, e.userRepo, e.assessmentRepo, e.pathRepo, e.router)
}

func (e *testEnv) progressService() ProgressService {
	return NewProgressService(e.db, e.log, e.userRepo, e.pathRepo, e.progressRepo, e.router)
}

func (e *testEnv) contentService() ContentService {
	return NewContentService(e.db, e.log, e.assessmentRepo, e.pathRepo, e.progressRepo, e.router)
}
