package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the window of a list response.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, JSONResponse{Success: true, Data: data})
}

// SuccessMessage returns a success response carrying a user-facing message.
func SuccessMessage(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, JSONResponse{Success: true, Message: message, Data: data})
}

// Paginated returns a success response with a pagination block.
func Paginated(ctx *gin.Context, data interface{}, total int64, limit, offset, count int) {
	ctx.JSON(http.StatusOK, JSONResponse{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+count) < total,
		},
	})
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, JSONResponse{Success: false, Message: message})
}
