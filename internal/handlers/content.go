package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/services"
)

type ContentHandler struct {
	log *logger.Logger
	svc services.ContentService
}

func NewContentHandler(log *logger.Logger, svc services.ContentService) *ContentHandler {
	return &ContentHandler{
		log: log.With("handler", "ContentHandler"),
		svc: svc,
	}
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, apperr.Validation("invalid_param", "%s must be an integer, got %q", name, c.Param(name))
	}
	return v, nil
}

// GET /content/:userID/:module
func (h *ContentHandler) ModuleContent(c *gin.Context) {
	module, err := intParam(c, "module")
	if err != nil {
		RespondError(c, err)
		return
	}
	mc, err := h.svc.ModuleContent(c.Request.Context(), c.Param("userID"), module)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "module content", mc)
}

// GET /content/:userID/:module/step/:step
func (h *ContentHandler) LessonStep(c *gin.Context) {
	module, err := intParam(c, "module")
	if err != nil {
		RespondError(c, err)
		return
	}
	step, err := intParam(c, "step")
	if err != nil {
		RespondError(c, err)
		return
	}
	view, err := h.svc.LessonStep(c.Request.Context(), c.Param("userID"), module, step)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "lesson step", view)
}

// GET /quiz/:userID/:module
func (h *ContentHandler) Quiz(c *gin.Context) {
	module, err := intParam(c, "module")
	if err != nil {
		RespondError(c, err)
		return
	}
	quiz, err := h.svc.QuizQuestions(c.Request.Context(), c.Param("userID"), module)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "quiz questions", quiz)
}

// GET /state/:userID
func (h *ContentHandler) LearningState(c *gin.Context) {
	state, err := h.svc.LearningState(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "learning state", state)
}

// GET /status/:userID
func (h *ContentHandler) AssessmentStatus(c *gin.Context) {
	status, err := h.svc.AssessmentStatus(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "assessment status", status)
}

type processRequest struct {
	UserID string `json:"user_id"`
}

type sendResponseRequest struct {
	UserID       string `json:"user_id"`
	RequestType  string `json:"request_type"`
	ModuleNumber int    `json:"module_number"`
	StepNumber   int    `json:"step_number"`
}

// POST /respond
// Render and mail content to the progress agent without a pending request.
func (h *ContentHandler) SendResponse(c *gin.Context) {
	var req sendResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	response, err := h.svc.SendResponse(c.Request.Context(), req.UserID, req.RequestType, req.ModuleNumber, req.StepNumber)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, "content response sent", response)
}

// POST /requests/process
// Answer the latest pending content request for a user.
func (h *ContentHandler) ProcessPending(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	response, err := h.svc.ProcessPending(c.Request.Context(), req.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if response == nil {
		RespondOK(c, "no pending requests", nil)
		return
	}
	RespondCreated(c, "content request answered", response)
}
