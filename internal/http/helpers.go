package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/refresh"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs err and hides it from the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("[HTTP] Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondAccountError maps account resolution failures to status codes.
func respondAccountError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		respondError(c, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, accounts.ErrNoCurrent):
		respondError(c, http.StatusConflict, "no_current_account", err.Error())
	case errors.Is(err, refresh.ErrNotCurrent):
		respondError(c, http.StatusConflict, "not_current_account", err.Error())
	case errors.Is(err, refresh.ErrUnknownDomain):
		respondError(c, http.StatusBadRequest, "unknown_domain", err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

// respondAccepted sends a 202 Accepted response for queued work.
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseWeekParam reads an epoch week from the URL. "current" and a missing
// value both yield 0, which callers resolve to the current week.
func parseWeekParam(c *gin.Context, paramName string) (int, bool) {
	raw := c.Param(paramName)
	if raw == "" || raw == "current" {
		return 0, true
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return week, true
}

// parseWeekQuery is parseWeekParam for query strings.
func parseWeekQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return week, true
}

// parsePagination reads limit and offset, clamping limit to maxPageSize.
func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultPageSize, 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondBadRequest(c, "invalid limit")
			return 0, 0, false
		}
		limit = min(n, maxPageSize)
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondBadRequest(c, "invalid offset")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

func newPaginatedResponse(data any, total int64, limit, offset int) PaginatedResponse {
	resp := PaginatedResponse{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
	if limit > 0 {
		resp.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return resp
}
