package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db       *database.Database
	accounts *accounts.Registry
	version  string
}

func NewHealthController(db *database.Database, registry *accounts.Registry, version string) *HealthController {
	return &HealthController{
		db:       db,
		accounts: registry,
		version:  version,
	}
}

// Status reports database connectivity and the account registry state. Only
// a failing database makes the service unhealthy.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.accounts != nil {
		checks["accounts"] = strconv.Itoa(len(h.accounts.Accounts()))
		if current, ok := h.accounts.Current(); ok {
			checks["current_account"] = string(current.Service)
		} else {
			checks["current_account"] = "none"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
