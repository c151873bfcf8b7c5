package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fieldops/backend/internal/config"
	"github.com/fieldops/backend/internal/http/handlers"
	"github.com/fieldops/backend/internal/http/middleware"
	"github.com/fieldops/backend/internal/metrics"
	"github.com/fieldops/backend/internal/nlq"

	_ "github.com/fieldops/backend/docs"
)

func Router(cfg config.Config, engine *nlq.Engine, health handlers.Pinger, m *metrics.Metrics, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(cors.New(CORSConfig()))

	h := &handlers.Handler{
		Engine:         engine,
		Health:         health,
		Validator:      validator.New(),
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	}

	r.GET("/healthz", h.Healthz)
	r.OPTIONS("/*path", h.Preflight)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	{
		api.POST("/assistant", h.Assistant)
		api.POST("/assistant/reset", h.AssistantReset)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.GET("/debug/classify", h.DebugClassify)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// CORSConfig lets any origin call the assistant from a browser.
func CORSConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"Origin", "X-Requested-With", "Content-Type", "Accept", middleware.SessionIDHeader},
		ExposeHeaders:             []string{middleware.SessionIDHeader, middleware.RequestIDHeader},
		OptionsResponseStatusCode: 200,
	}
}
