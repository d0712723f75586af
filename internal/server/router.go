package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/finbridge/finlit-backend/internal/handlers"
)

// newEngine is the shared base every agent router starts from: recovery,
// tracing middleware, CORS, and the healthcheck.
func newEngine(serviceName string) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)
	return router
}

func NewAssessmentRouter(h *handlers.AssessmentHandler) *gin.Engine {
	router := newEngine("assessment-agent")

	router.POST("/assess", h.Assess)
	router.GET("/history/:userID", h.History)
	router.GET("/assessments/:userID/:topic", h.TopicAssessment)
	router.GET("/recommendations/:userID", h.Recommendations)
	router.POST("/handoff", h.Handoff)
	router.GET("/stats", h.Stats)

	return router
}

func NewPlanningRouter(h *handlers.PlanningHandler) *gin.Engine {
	router := newEngine("planning-agent")

	router.POST("/plan", h.BuildPath)
	router.GET("/path/:userID", h.CurrentPath)
	router.GET("/handoff/:userID", h.AssessmentHandoff)
	router.POST("/handoff", h.ProgressHandoff)
	router.GET("/insights/:userID", h.Insights)

	return router
}

func NewContentRouter(h *handlers.ContentHandler) *gin.Engine {
	router := newEngine("content-delivery-agent")

	router.GET("/content/:userID/:module", h.ModuleContent)
	router.GET("/content/:userID/:module/step/:step", h.LessonStep)
	router.GET("/quiz/:userID/:module", h.Quiz)
	router.GET("/state/:userID", h.LearningState)
	router.GET("/status/:userID", h.AssessmentStatus)
	router.POST("/requests/process", h.ProcessPending)
	router.POST("/respond", h.SendResponse)

	return router
}

func NewProgressRouter(h *handlers.ProgressHandler) *gin.Engine {
	router := newEngine("progress-agent")

	router.GET("/modules/:userID", h.LearningModules)
	router.POST("/modules/start", h.StartModule)
	router.POST("/progress", h.SaveProgress)
	router.POST("/complete", h.CompleteModule)
	router.POST("/adapt", h.AdaptDifficulty)
	router.GET("/progress/:userID", h.Overview)
	router.GET("/dashboard/:userID", h.Dashboard)
	router.GET("/handoff/:userID", h.PlanningHandoff)
	router.POST("/content-request", h.RequestContent)
	router.GET("/content-response/:userID", h.ContentResponse)

	return router
}
