package handlers

import (
	"opterra/internal/logger"
	"opterra/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live metrics stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerAssessmentRoutes(api)
		h.registerPlannerRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerAssessmentRoutes(api *gin.RouterGroup) {
	assessments := api.Group("/assessments")
	{
		assessments.POST("", h.createAssessment)
		assessments.GET("", h.listAssessments)
		assessments.GET("/:id", h.getAssessment)
		assessments.GET("/:id/recommendation", h.getRecommendation)
		assessments.POST("/:id/simulate", h.simulateRepairs)
		assessments.GET("/:id/projection", h.getProjection)
	}
}

func (h *Handler) registerPlannerRoutes(api *gin.RouterGroup) {
	api.GET("/repairs", h.getRepairCatalog)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
