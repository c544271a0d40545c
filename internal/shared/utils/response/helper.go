package response

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondSuccess writes a success envelope
func RespondSuccess(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, StatusSuccess, code, message, data, nil)
}

// RespondError writes an error envelope; details may be nil
func RespondError(c *gin.Context, code int, message string, details interface{}) {
	RespondJSON(c, StatusError, code, message, nil, details)
}

// TotalPages is the page count for total rows at limit rows per page. A
// non-positive limit counts as defaultLimit.
func TotalPages(total int64, limit, defaultLimit int) int {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
