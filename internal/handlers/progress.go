package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/services"
)

type ProgressHandler struct {
	log *logger.Logger
	svc services.ProgressService
}

func NewProgressHandler(log *logger.Logger, svc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log: log.With("handler", "ProgressHandler"),
		svc: svc,
	}
}

// GET /modules/:userID
// Per-module dashboard cards with status and percent complete.
func (h *ProgressHandler) LearningModules(c *gin.Context) {
	views, err := h.svc.LearningModules(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "learning modules", gin.H{"modules": views, "count": len(views)})
}

type startModuleRequest struct {
	UserID       string `json:"user_id"`
	ModuleNumber int    `json:"module_number"`
}

// POST /modules/start
func (h *ProgressHandler) StartModule(c *gin.Context) {
	var req startModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	started, err := h.svc.StartModule(c.Request.Context(), req.UserID, req.ModuleNumber)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, started.Message, started)
}

type saveProgressRequest struct {
	UserID       string `json:"user_id"`
	ModuleNumber int    `json:"module_number"`
	Step         int    `json:"step"`
	Score        int    `json:"score"`
}

// POST /progress
func (h *ProgressHandler) SaveProgress(c *gin.Context) {
	var req saveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	record, err := h.svc.SaveProgress(c.Request.Context(), req.UserID, req.ModuleNumber, req.Step, req.Score)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, record.Feedback, record)
}

type completeModuleRequest struct {
	UserID       string `json:"user_id"`
	ModuleNumber int    `json:"module_number"`
	FinalScore   int    `json:"final_score"`
}

// POST /complete
func (h *ProgressHandler) CompleteModule(c *gin.Context) {
	var req completeModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	result, err := h.svc.CompleteModule(c.Request.Context(), req.UserID, req.ModuleNumber, req.FinalScore)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, "module completed", result)
}

type adaptDifficultyRequest struct {
	UserID       string `json:"user_id"`
	ModuleNumber int    `json:"module_number"`
	CurrentScore int    `json:"current_score"`
}

// POST /adapt
// Recommend a difficulty move for a module from its current score.
func (h *ProgressHandler) AdaptDifficulty(c *gin.Context) {
	var req adaptDifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	adaptation, err := h.svc.AdaptDifficulty(c.Request.Context(), req.UserID, req.ModuleNumber, req.CurrentScore)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, adaptation.Recommendation, adaptation)
}

// GET /progress/:userID
func (h *ProgressHandler) Overview(c *gin.Context) {
	overview, err := h.svc.Overview(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "progress overview", overview)
}

// GET /dashboard/:userID
func (h *ProgressHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "dashboard stats", stats)
}

// GET /handoff/:userID
// Read the latest planning handoff addressed to the progress agent.
func (h *ProgressHandler) PlanningHandoff(c *gin.Context) {
	received, err := h.svc.PlanningHandoff(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "planning handoff", gin.H{
		"payload":     received.Payload,
		"from":        received.Message.FromComponent,
		"received_at": received.Message.CreatedAt,
	})
}

// GET /content-response/:userID
// Read the latest content the content agent mailed back.
func (h *ProgressHandler) ContentResponse(c *gin.Context) {
	reply, err := h.svc.ContentResponse(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if reply == nil {
		RespondError(c, apperr.NotFound("no_content_response", "no content response found", "Send a content request first."))
		return
	}
	RespondOK(c, "content response", reply)
}

type contentRequestBody struct {
	UserID       string `json:"user_id"`
	RequestType  string `json:"request_type"`
	ModuleNumber int    `json:"module_number"`
	StepNumber   int    `json:"step_number"`
}

// POST /content-request
// Mail a content request to the content delivery agent.
func (h *ProgressHandler) RequestContent(c *gin.Context) {
	var req contentRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	payload, err := h.svc.RequestContent(c.Request.Context(), req.UserID, req.RequestType, req.ModuleNumber, req.StepNumber)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, "content request sent", payload)
}
