package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/schooldesk/internal/scheduler"
	"github.com/mrlokans/schooldesk/internal/settingsstore"
)

type SettingsController struct {
	settings  *settingsstore.SettingsStore
	scheduler *scheduler.RefreshScheduler
}

func NewSettingsController(settings *settingsstore.SettingsStore, refreshScheduler *scheduler.RefreshScheduler) *SettingsController {
	return &SettingsController{settings: settings, scheduler: refreshScheduler}
}

type RefreshSettingsResponse struct {
	settingsstore.RefreshConfigInfo
	Running   bool                        `json:"running"`
	Syncing   bool                        `json:"syncing"`
	NextRunAt *time.Time                  `json:"next_run_at,omitempty"`
	LastRun   settingsstore.RefreshStatus `json:"last_run"`
}

// UpdateRefreshSettingsRequest fields are optional; nil keeps the current value.
type UpdateRefreshSettingsRequest struct {
	Enabled  *bool   `json:"enabled"`
	Schedule *string `json:"schedule" binding:"omitempty,min=9"`
}

func (sc *SettingsController) response(ctx context.Context) RefreshSettingsResponse {
	resp := RefreshSettingsResponse{
		RefreshConfigInfo: sc.settings.GetRefreshConfigInfo(ctx),
		LastRun:           sc.settings.GetRefreshStatus(ctx),
	}
	if sc.scheduler != nil {
		resp.Running = sc.scheduler.IsRunning()
		resp.Syncing = sc.scheduler.IsSyncing()
		resp.NextRunAt = sc.scheduler.GetNextRunTime()
	}
	return resp
}

// GetRefresh handles GET /api/settings/refresh
func (sc *SettingsController) GetRefresh(c *gin.Context) {
	c.JSON(http.StatusOK, sc.response(c.Request.Context()))
}

// UpdateRefresh handles PUT /api/settings/refresh
func (sc *SettingsController) UpdateRefresh(c *gin.Context) {
	var req UpdateRefreshSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	if req.Schedule != nil {
		if err := sc.settings.SetRefreshSchedule(ctx, *req.Schedule); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_schedule", err.Error())
			return
		}
	}
	if req.Enabled != nil {
		if err := sc.settings.SetRefreshEnabled(ctx, *req.Enabled); err != nil {
			respondInternalError(c, err, "store refresh settings")
			return
		}
	}

	sc.apply(c)
}

// ResetRefresh handles DELETE /api/settings/refresh
// Stored overrides are dropped and the configured schedule applies again.
func (sc *SettingsController) ResetRefresh(c *gin.Context) {
	if err := sc.settings.ClearRefreshSettings(c.Request.Context()); err != nil {
		respondInternalError(c, err, "clear refresh settings")
		return
	}
	sc.apply(c)
}

// apply restarts the scheduler with the effective settings. The scheduler
// outlives the request, so it is not bound to the request context.
func (sc *SettingsController) apply(c *gin.Context) {
	ctx := c.Request.Context()
	if sc.scheduler != nil {
		if err := sc.scheduler.Reschedule(context.Background(), sc.settings.GetRefreshConfig(ctx)); err != nil {
			respondInternalError(c, err, "reschedule refresh")
			return
		}
	}
	respondSuccess(c, "refresh settings updated", sc.response(ctx))
}
