package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.POST("/certificate", h.certificate)
		api.GET("/columns", h.columnsPreview)
		api.GET("/qr", qrHandler)
	}
}
