package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	rawDB  *database.DB
}

// New creates a new server instance. rawDB is only used for health checks
// and may be nil.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, rawDB *database.DB, images *service.ImageService) *Server {
	router := gin.Default()
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	s := &Server{
		router: router,
		rawDB:  rawDB,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}

	router.GET("/health", s.health)
	api.SetupAPI(router, db, redisClient, cfg.JWTSecret, images)

	return s
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	if s.rawDB != nil {
		if err := s.rawDB.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
