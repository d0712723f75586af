package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/services"
)

type PlanningHandler struct {
	log *logger.Logger
	svc services.PlanningService
}

func NewPlanningHandler(log *logger.Logger, svc services.PlanningService) *PlanningHandler {
	return &PlanningHandler{
		log: log.With("handler", "PlanningHandler"),
		svc: svc,
	}
}

type planRequest struct {
	UserID string `json:"user_id"`
}

// POST /plan
// Build and persist a new learning path from the user's assessments.
func (h *PlanningHandler) BuildPath(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	path, err := h.svc.BuildLearningPath(c.Request.Context(), req.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	doc, err := path.Document()
	if err != nil {
		RespondError(c, apperr.Store("decode_modules", err))
		return
	}
	RespondCreated(c, "learning path created", doc)
}

// GET /path/:userID
func (h *PlanningHandler) CurrentPath(c *gin.Context) {
	path, err := h.svc.CurrentPath(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if path == nil {
		RespondError(c, apperr.NotFound("no_learning_path", "no learning path found for user", "Create a learning path first."))
		return
	}
	doc, err := path.Document()
	if err != nil {
		RespondError(c, apperr.Store("decode_modules", err))
		return
	}
	RespondOK(c, "current learning path", doc)
}

// GET /handoff/:userID
// Read the latest assessment handoff addressed to the planner.
func (h *PlanningHandler) AssessmentHandoff(c *gin.Context) {
	received, err := h.svc.AssessmentHandoff(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "assessment handoff", gin.H{
		"payload":     received.Payload,
		"from":        received.Message.FromComponent,
		"received_at": received.Message.CreatedAt,
	})
}

type progressHandoffRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// POST /handoff
// Mail the finished path to the progress agent.
func (h *PlanningHandler) ProgressHandoff(c *gin.Context) {
	var req progressHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	payload, err := h.svc.PrepareProgressHandoff(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, "planning handoff sent", payload)
}

// GET /insights/:userID
func (h *PlanningHandler) Insights(c *gin.Context) {
	insights, err := h.svc.DashboardInsights(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "dashboard insights", insights)
}
