package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the envelope for every non-2xx response.
type ErrorBody struct {
	Detail    string            `json:"detail"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// JSON writes data as the response body.
func JSON(ctx *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

// Error writes an ErrorBody and aborts the handler chain.
func Error(ctx *gin.Context, status int, detail string, fields map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	ctx.AbortWithStatusJSON(status, ErrorBody{
		Detail:    detail,
		Errors:    fields,
		RequestID: ctx.GetString("request_id"),
	})
}

func NoContent(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}
