package app

import (
	"studybuilder/internal/cache"
	"studybuilder/internal/config"
	"studybuilder/internal/repository"
	"studybuilder/internal/resolver"
	"studybuilder/internal/service"
	"studybuilder/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// App holds the wired repositories, caches and services of the API
type App struct {
	TemplateRepo repository.TemplateRepo
	ContentRepo  repository.ContentRepo
	RuleRepo     repository.RuleRepo
	StudyRepo    repository.StudyRepo

	SnapshotCache cache.SnapshotCache
	ApplyLock     cache.ApplyLock

	AuthService     *service.AuthService
	SnapshotService *service.SnapshotService
	StudyService    *service.StudyService

	WSHub *ws.Hub
}

// New wires the application over open database and cache clients. The
// caller owns the clients and must Close the App to stop the hub.
func New(db *mongo.Database, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) (*App, error) {
	policy, err := resolver.ParseMatchPolicy(cfg.Resolution.MatchPolicy)
	if err != nil {
		return nil, err
	}

	a := &App{
		TemplateRepo:  repository.NewTemplateRepo(db),
		ContentRepo:   repository.NewContentRepo(db),
		RuleRepo:      repository.NewRuleRepo(db),
		StudyRepo:     repository.NewStudyRepo(db),
		SnapshotCache: cache.NewSnapshotCache(rdb, cfg.SnapshotTTL()),
		ApplyLock:     cache.NewApplyLock(rdb, cfg.ApplyLockTTL()),
		AuthService:   service.NewAuthService(cfg.Auth),
		WSHub:         ws.NewHub(logger.Named("ws")),
	}

	a.SnapshotService = service.NewSnapshotService(a.TemplateRepo, a.ContentRepo, a.RuleRepo, a.SnapshotCache, logger.Named("snapshot"))
	a.StudyService = service.NewStudyService(a.StudyRepo, a.SnapshotService, a.ApplyLock, service.StudyOptions{
		MatchPolicy:      policy,
		StrictValidation: cfg.Resolution.StrictValidation,
	}, logger.Named("study"))

	// Hub implements service.Broadcaster
	a.StudyService.SetBroadcaster(a.WSHub)
	return a, nil
}

// Close stops background workers
func (a *App) Close() {
	a.WSHub.Close()
}
