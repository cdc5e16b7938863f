package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nearchat/nearchat-server/internal/auth"
	"github.com/nearchat/nearchat-server/internal/config"
	"github.com/nearchat/nearchat-server/internal/core"
	"github.com/nearchat/nearchat-server/internal/geoip"
	"github.com/nearchat/nearchat-server/internal/store"
)

// NewServer builds the HTTP server: REST API, health check, and the
// websocket endpoint bridging into the event router.
func NewServer(router *core.Router, authService *auth.Service, st store.Store, resolver geoip.Resolver, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, logger)
	userHandlers := NewUserHandlers(st, logger)
	roomHandlers := NewRoomHandlers(st, router, cfg.RoomRadiusKm, logger)
	chatHandlers := NewChatHandlers(st, router, logger)
	utilsHandlers := NewUtilsHandlers(st, resolver, logger)

	api := engine.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	authed := api.Group("", AuthMiddleware(authService, logger))
	authed.GET("/me", userHandlers.Me)
	authed.GET("/people/:id", userHandlers.Profile)
	authed.POST("/rooms", roomHandlers.CreateRoom)
	authed.GET("/rooms", roomHandlers.ListRooms)
	authed.GET("/rooms/:id/messages", chatHandlers.ListMessages)
	authed.POST("/rooms/:id/messages", chatHandlers.SendMessage)
	authed.PUT("/messages/:id", chatHandlers.EditMessage)
	authed.DELETE("/messages/:id", chatHandlers.DeleteMessage)
	authed.GET("/geoip", utilsHandlers.GeoIP)

	engine.GET("/ws", gin.WrapH(NewWSHandler(router, authService, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
