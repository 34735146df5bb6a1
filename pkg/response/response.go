package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope returned for every failed request.
// Message carries a single rule-violation message; Messages carries the list
// of field-level validation failures. Exactly one of the two is set.
type ErrorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Messages  []string  `json:"messages,omitempty"`
	Path      string    `json:"path"`
	RequestID string    `json:"request_id,omitempty"`
}

func newBody(c *gin.Context, status int) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return ErrorBody{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Path:      c.Request.URL.Path,
		RequestID: c.GetString("request_id"),
	}
}

// Fail writes the envelope with a single message and aborts the request.
func Fail(c *gin.Context, status int, message string) {
	body := newBody(c, status)
	body.Message = message
	c.AbortWithStatusJSON(body.Status, body)
}

// FailFields writes the envelope with field-level validation messages and
// aborts the request.
func FailFields(c *gin.Context, status int, messages []string) {
	body := newBody(c, status)
	body.Messages = messages
	c.AbortWithStatusJSON(body.Status, body)
}
