package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/supernovahq/movie-match/internal/handler"
	"github.com/supernovahq/movie-match/internal/middleware"
	"github.com/supernovahq/movie-match/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Films   *handler.FilmHandler
	Watch   *handler.WatchHandler
	Session *handler.SessionHandler
	Profile *handler.ProfileHandler
}

// RegisterRoutes mounts the whole API. Register and login live under
// /v1/auth without authentication; everything else requires a valid
// access token. The extra middleware (e.g. the rate limiter) applies to
// the protected group.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, extra ...echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	pub := e.Group("/v1/auth")
	pub.POST("/register", h.Auth.Register)
	pub.POST("/login", h.Auth.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(extra...)

	auth.POST("/auth/logout/:login", h.Auth.Logout)
	auth.GET("/auth/ping", h.Auth.Ping)

	films := auth.Group("/films")
	films.GET("", h.Films.List)
	films.POST("/add-image", h.Films.AddImage)
	films.GET("/discuss/:name/:year", h.Films.DiscussByName)
	films.GET("/discuss-id/:id", h.Films.DiscussByID)
	films.GET("/:id", h.Films.Get)

	watchlist := auth.Group("/watchlist")
	watchlist.GET("", h.Watch.List(model.Watchlist))
	watchlist.POST("/add", h.Watch.AddNew(model.Watchlist))
	watchlist.POST("/add-with-image", h.Watch.AddNewWithImage(model.Watchlist))
	watchlist.POST("/add/:id", h.Watch.AddExisting(model.Watchlist))
	watchlist.DELETE("/remove/:id", h.Watch.RemoveWatchlist)

	watched := auth.Group("/watched")
	watched.GET("", h.Watch.List(model.Watched))
	watched.POST("/add", h.Watch.AddNew(model.Watched))
	watched.POST("/add-with-image", h.Watch.AddNewWithImage(model.Watched))
	watched.POST("/add/:id", h.Watch.AddExisting(model.Watched))

	auth.POST("/session/create/:login", h.Session.Create)
	auth.POST("/session/end/:login", h.Session.End)

	auth.GET("/profile", h.Profile.Get)
}
