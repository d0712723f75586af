package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbridge/finlit-backend/internal/apperr"
)

// Envelope is the uniform response shape for every agent endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Message: message, Data: data})
}

func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Status: "success", Message: message, Data: data})
}

// RespondError maps the error taxonomy onto HTTP statuses: validation 400,
// precondition 409, not-found 404, everything else 500. Guidance, when
// present, rides along in data.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindPrecondition:
		status = http.StatusConflict
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}

	env := Envelope{Status: "error"}
	if ae, ok := apperr.As(err); ok {
		env.Message = ae.UserMessage()
		if ae.Guidance != "" {
			env.Data = gin.H{"guidance": ae.Guidance}
		}
	} else if err != nil {
		env.Message = err.Error()
	} else {
		env.Message = "unknown error"
	}
	c.JSON(status, env)
}
