package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
)

// --- Response Types ---

// MessageResponse is the body of every error and confirmation response.
type MessageResponse struct {
	Message string `json:"message"`
}

// RowsAffectedResponse reports the outcome of an update or delete.
type RowsAffectedResponse struct {
	RowsAffected int64 `json:"rows_affected"`
}

// --- Error Response Helpers ---

// respondMessage sends a JSON message with the given status code.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	respondMessage(c, http.StatusBadRequest, message)
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, message string) {
	respondMessage(c, http.StatusNotFound, message)
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s) [%s]: %v", context, auth.GetRequestID(c), err)
	respondMessage(c, http.StatusInternalServerError, "internal server error")
}

// respondRowsAffected sends a 200 OK response with the affected row count.
func respondRowsAffected(c *gin.Context, n int64) {
	c.JSON(http.StatusOK, RowsAffectedResponse{RowsAffected: n})
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters.
// It does not respond; callers pick the status for a bad id.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// requestInfo collects the client details recorded with audit events.
func requestInfo(c *gin.Context) audit.RequestInfo {
	return audit.RequestInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: auth.GetRequestID(c),
	}
}
