package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/timeline/internal/config"
	"github.com/klokku/timeline/internal/event_bus"
	"github.com/klokku/timeline/internal/utils"
	"github.com/klokku/timeline/pkg/google"
	"github.com/klokku/timeline/pkg/timeline"
	"github.com/klokku/timeline/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	TimelineRepo    timeline.Repository
	TimelineService *timeline.Service
	TimelineHandler *timeline.Handler

	GoogleAuth     *google.GoogleAuth
	GoogleService  google.Service
	GoogleImporter *google.Importer
	GoogleHandler  *google.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	return buildDependencies(
		user.NewUserRepo(db),
		timeline.NewRepository(db),
		google.NewAuthRepository(db),
		cfg,
	)
}

func buildDependencies(userRepo user.Repo, timelineRepo timeline.Repository, tokens google.TokenStore, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(userRepo)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.TimelineRepo = timelineRepo
	deps.TimelineService = timeline.NewService(deps.TimelineRepo, deps.EventBus, cfg.Timeline)
	deps.TimelineHandler = timeline.NewHandler(deps.TimelineService)

	deps.GoogleAuth = google.NewGoogleAuth(tokens, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth)
	deps.GoogleImporter = google.NewImporter(deps.GoogleService, deps.TimelineService)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService, deps.GoogleImporter, deps.Clock)

	return deps
}
