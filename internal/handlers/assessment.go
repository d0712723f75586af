package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/services"
	"github.com/finbridge/finlit-backend/internal/types"
)

type AssessmentHandler struct {
	log *logger.Logger
	svc services.AssessmentService
}

func NewAssessmentHandler(log *logger.Logger, svc services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		log: log.With("handler", "AssessmentHandler"),
		svc: svc,
	}
}

type assessRequest struct {
	UserID   string `json:"user_id"`
	Topic    string `json:"topic"`
	Response string `json:"response"`
}

// POST /assess
// Evaluate a free-text response and append the assessment row.
func (h *AssessmentHandler) Assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	eval, err := h.svc.SaveAssessment(c.Request.Context(), req.UserID, types.Topic(req.Topic), req.Response)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, "assessment saved", eval)
}

// GET /history/:userID
func (h *AssessmentHandler) History(c *gin.Context) {
	rows, err := h.svc.History(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "assessment history", gin.H{"assessments": rows, "count": len(rows)})
}

// GET /assessments/:userID/:topic
func (h *AssessmentHandler) TopicAssessment(c *gin.Context) {
	row, err := h.svc.TopicAssessment(c.Request.Context(), c.Param("userID"), types.Topic(c.Param("topic")))
	if err != nil {
		RespondError(c, err)
		return
	}
	if row == nil {
		RespondError(c, apperr.NotFound("no_topic_assessment", "no assessment found for this topic", "Assess this topic first."))
		return
	}
	RespondOK(c, "latest topic assessment", row)
}

// GET /recommendations/:userID
func (h *AssessmentHandler) Recommendations(c *gin.Context) {
	recs, err := h.svc.RecommendedTopics(c.Request.Context(), c.Param("userID"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "recommended topics", recs)
}

type assessmentHandoffRequest struct {
	UserID  string `json:"user_id"`
	Summary string `json:"summary"`
}

// POST /handoff
// Close out the assessment phase and mail the profile to the planner.
func (h *AssessmentHandler) Handoff(c *gin.Context) {
	var req assessmentHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apperr.Validation("invalid_body", "invalid request body: %v", err))
		return
	}
	payload, err := h.svc.CompleteAndHandoff(c.Request.Context(), req.UserID, req.Summary)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, "assessment handoff sent", payload)
}

// GET /stats
func (h *AssessmentHandler) Stats(c *gin.Context) {
	info, err := h.svc.DatabaseInfo(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, "store statistics", info)
}
