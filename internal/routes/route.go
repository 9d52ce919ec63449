package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventful/internal/container"
	"github.com/joshua-takyi/eventful/internal/handlers"
	"github.com/joshua-takyi/eventful/internal/middleware"
	"github.com/joshua-takyi/eventful/internal/web"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/joshua-takyi/eventful/docs"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container, allowOrigins []string) *gin.Engine {
	if container.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 8 << 20

	auth := middleware.RequireAuth(container.Tokens, container.Logger)
	optionalAuth := middleware.OptionalAuth(container.Tokens)
	secure := container.Production

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "OK",
				"service": "eventful-api",
			})
		})
	}

	events := v1.Group("/events")
	{
		events.GET("", handlers.ListEvents(container.EventService))
		events.POST("", auth, handlers.CreateEvent(container.EventService))
		events.GET("/search", handlers.SearchEvents(container.EventService))
		events.GET("/getEventsByCategory", handlers.EventsByCategory(container.EventService))
		events.GET("/hosted/:hostId", handlers.ListHostedEvents(container.EventService))
		events.GET("/host/:id", auth, handlers.GetHostedEvent(container.EventService))
		events.PUT("/join/:id", auth, handlers.JoinEvent(container.EventService))
		events.PUT("/leave/:id", auth, handlers.LeaveEvent(container.EventService))
		events.GET("/:id", optionalAuth, handlers.GetEvent(container.EventService))
		events.PUT("/:id", auth, handlers.UpdateEvent(container.EventService))
		events.DELETE("/:id", auth, handlers.DeleteEvent(container.EventService))
	}

	users := v1.Group("/users")
	{
		users.POST("/signup", handlers.Signup(container.UserService))
		users.POST("/login", handlers.Login(container.UserService, secure))
		users.POST("/logout", handlers.Logout(secure))
		users.GET("/me", auth, handlers.Me(container.UserService))
		users.GET("/profile/:username", handlers.GetProfile(container.UserService))
		users.PUT("/update-user-profile", auth, handlers.UpdateProfile(container.UserService))
		users.PUT("/profile-picture", auth, handlers.UploadProfilePicture(container.UserService))
	}

	r.GET("/swagger/*any", gin.WrapH(httpSwagger.WrapHandler))

	web.Register(r, container.EventService, optionalAuth, container.Logger)

	return r
}
