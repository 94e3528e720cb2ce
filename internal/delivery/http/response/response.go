package response

import (
	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Redirect  string      `json:"redirect,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string)
	return idStr
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// SuccessRedirect is a success that also tells the client which screen to open next.
func SuccessRedirect(c *gin.Context, code int, message string, data interface{}, route string) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Redirect:  route,
		RequestID: requestID(c),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}

// Redirect is a denial the client handles by navigating rather than showing an error.
func Redirect(c *gin.Context, code int, message, route string) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Redirect:  route,
		RequestID: requestID(c),
	})
}
