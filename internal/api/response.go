package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kemalcalak/Resume-Builder/internal/ai"
	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
	"github.com/kemalcalak/Resume-Builder/internal/document"
	"github.com/kemalcalak/Resume-Builder/internal/errcode"
)

// Success writes {success:true, data}.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// SuccessMessage writes {success:true, message} with optional data.
func SuccessMessage(c *gin.Context, status int, msg string, data any) {
	body := gin.H{"success": true, "message": msg}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// Error writes the failure envelope.
func Error(c *gin.Context, status, code int, msg string, detail any) {
	body := gin.H{"success": false, "code": code, "message": msg}
	if detail != nil {
		body["error"] = detail
	}
	c.JSON(status, body)
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"code":    errcode.Unauthorized,
		"message": "unauthorized",
	})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.ValidationFailed, msg, nil)
}
func NotFound(c *gin.Context, msg string) { Error(c, http.StatusNotFound, errcode.NotFound, msg, nil) }
func Conflict(c *gin.Context, msg string) { Error(c, http.StatusConflict, errcode.Conflict, msg, nil) }
func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, errcode.SystemError, msg, nil)
}

// ValidationFailed writes a 400 with the field to message map.
func ValidationFailed(c *gin.Context, fields map[string]string) {
	Error(c, http.StatusBadRequest, errcode.ValidationFailed, "validation failed", fields)
}

// RespondError maps domain errors onto the envelope. Unknown errors are
// logged and reported as 500 without their text.
func RespondError(c *gin.Context, err error, fallback string) {
	var verr *document.ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationFailed(c, verr.Fields)
	case errors.Is(err, document.ErrNotFound):
		NotFound(c, "document not found")
	case errors.Is(err, ai.ErrGenerationFailed):
		middleware.LoggerFromContext(c).Warn("ai generation failed", "error", err)
		Error(c, http.StatusBadGateway, errcode.GenerationFailed, "generation failed", nil)
	default:
		middleware.LoggerFromContext(c).Error(fallback, "error", err)
		Internal(c, fallback)
	}
}
