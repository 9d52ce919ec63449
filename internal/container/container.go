package container

import (
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/joshua-takyi/eventful/internal/cache"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/media"
	"github.com/joshua-takyi/eventful/internal/models"
	"github.com/joshua-takyi/eventful/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Logger       *slog.Logger
	Tokens       *helpers.Tokens
	Images       media.Store
	EventService *services.EventService
	UserService  *services.UserService
	Production   bool
}

type Repos struct {
	Events models.EventRepo
	Users  models.UserRepo
}

// NewContainer wires the services. redisClient may be nil, in which case
// views are counted on the event documents only.
func NewContainer(
	logger *slog.Logger,
	repos Repos,
	images media.Store,
	tokens *helpers.Tokens,
	redisClient *redis.Client,
	production bool,
) *Container {
	var views services.ViewRecorder
	if redisClient != nil {
		views = cache.NewViewCounter(redisClient)
	}

	return &Container{
		Logger:       logger,
		Tokens:       tokens,
		Images:       images,
		EventService: services.NewEventService(repos.Events, repos.Users, images, views, logger),
		UserService:  services.NewUserService(repos.Users, tokens, images, logger),
		Production:   production,
	}
}
