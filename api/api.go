package api

import (
	"database/sql"
	"fmt"
	"time"

	"driftbacktest/internal/app"
	"driftbacktest/internal/logger"
	"driftbacktest/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	Db                *sql.DB
	SimulationHandler app.SimulationHandler
	PriceRepository   repository.PriceRepository
}

func (m ApiHandler) StartApi(port int) error {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(logRequestMiddleware(logger.New()))

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to driftbacktest"})
	})
	router.POST("/simulate", m.simulate)
	router.POST("/updatePrices", m.updatePrices)

	return router.Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Error(err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func logRequestMiddleware(baseLogger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := uuid.New()
		ctx.Set("requestID", requestID.String())

		log := baseLogger.With(
			"requestID", requestID.String(),
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
		)
		ctx.Request = ctx.Request.WithContext(
			logger.AddToContext(ctx.Request.Context(), log),
		)

		start := time.Now()
		ctx.Next()

		log.Infow("request handled",
			"status", ctx.Writer.Status(),
			"durationMs", time.Since(start).Milliseconds(),
		)
	}
}
