package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/certgen/internal/api"
	"github.com/youruser/certgen/internal/certimg"
	"github.com/youruser/certgen/internal/config"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CERTGEN_CONFIG"))
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if _, err := os.Stat(cfg.TemplatePath); err != nil {
		logger.Fatal("template not found", zap.String("path", cfg.TemplatePath), zap.Error(err))
	}

	renderer, err := certimg.NewRenderer(cfg, logger)
	if err != nil {
		logger.Fatal("renderer", zap.Error(err))
	}

	r := gin.Default()
	api.RegisterRoutes(r, api.NewHandler(renderer, logger))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting server", zap.String("addr", "http://localhost:"+port))
	if err := r.Run(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
