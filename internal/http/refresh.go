package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/schooldesk/internal/dispatch"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/refresh"
	"github.com/mrlokans/schooldesk/internal/tasks"
)

// allDomains is the :domain value that refreshes everything.
const allDomains = "all"

// RefreshController triggers refreshes of the current account. With a task
// client the work is queued and 202 is returned; otherwise it runs inside the
// request.
type RefreshController struct {
	refresher *refresh.Service
	tasks     *tasks.Client
}

func NewRefreshController(refresher *refresh.Service, taskClient *tasks.Client) *RefreshController {
	return &RefreshController{refresher: refresher, tasks: taskClient}
}

// Refresh handles POST /api/refresh/:domain?week=N
func (rc *RefreshController) Refresh(c *gin.Context) {
	raw := c.Param("domain")
	var domains []entities.Domain
	if raw == allDomains {
		domains = entities.AllDomains()
	} else if d, ok := entities.ParseDomain(raw); ok {
		domains = []entities.Domain{d}
	} else {
		respondError(c, http.StatusBadRequest, "unknown_domain", "unknown domain "+raw)
		return
	}

	week, ok := parseWeekQuery(c, "week")
	if !ok {
		return
	}

	account, err := rc.refresher.Current()
	if err != nil {
		respondAccountError(c, err, "refresh")
		return
	}

	if rc.tasks != nil {
		queued := make([]backlite.Task, 0, len(domains))
		for _, d := range domains {
			queued = append(queued, tasks.RefreshDomainTask{AccountLocalID: account.LocalID, Domain: d, Week: week})
		}
		ids, err := rc.tasks.Enqueue(queued...)
		if err != nil {
			respondInternalError(c, err, "enqueue refresh")
			return
		}
		respondAccepted(c, "refresh enqueued", gin.H{"task_ids": ids})
		return
	}

	ctx := c.Request.Context()
	if raw == allDomains {
		report, err := rc.refresher.RefreshAll(ctx, account.LocalID, week)
		if err != nil {
			respondAccountError(c, err, "refresh all")
			return
		}
		respondSuccess(c, "refreshed", gin.H{"outcomes": report, "failed": report.FailedDomains()})
		return
	}

	outcome, err := rc.refresher.RefreshDomain(ctx, account.LocalID, domains[0], week)
	if err != nil {
		respondAccountError(c, err, "refresh domain")
		return
	}
	respondSuccess(c, "refreshed", gin.H{"domain": domains[0], "outcome": outcome})
}

type ImportCalendarsRequest struct {
	URLs []string `json:"urls" binding:"omitempty,dive,url"`
}

type ImportResultView struct {
	URL     string `json:"url"`
	Events  int    `json:"events"`
	Weeks   []int  `json:"weeks,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ImportCalendars handles POST /api/calendars/import
// Without URLs in the body the account's subscriptions are imported.
func (rc *RefreshController) ImportCalendars(c *gin.Context) {
	var req ImportCalendarsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	account, err := rc.refresher.Current()
	if err != nil {
		respondAccountError(c, err, "import calendars")
		return
	}

	if rc.tasks != nil {
		ids, err := rc.tasks.Enqueue(tasks.ImportCalendarsTask{AccountLocalID: account.LocalID, URLs: req.URLs})
		if err != nil {
			respondInternalError(c, err, "enqueue calendar import")
			return
		}
		respondAccepted(c, "calendar import enqueued", gin.H{"task_ids": ids})
		return
	}

	results, err := rc.refresher.ImportCalendars(c.Request.Context(), account.LocalID, req.URLs)
	if err != nil {
		respondAccountError(c, err, "import calendars")
		return
	}
	views := make([]ImportResultView, 0, len(results))
	for _, r := range results {
		view := ImportResultView{URL: r.URL, Events: r.Events, Weeks: r.Weeks, Skipped: r.Skipped}
		if r.Err != nil {
			view.Error = r.Err.Error()
		}
		views = append(views, view)
	}
	respondSuccess(c, "calendars imported", views)
}

// ForgetCalendar handles DELETE /api/calendars?url=...
func (rc *RefreshController) ForgetCalendar(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		respondBadRequest(c, "url is required")
		return
	}
	if err := rc.refresher.ForgetCalendar(c.Request.Context(), "", url); err != nil {
		respondAccountError(c, err, "forget calendar")
		return
	}
	respondSuccess(c, "calendar forgotten", gin.H{"url": url})
}

type ToggleHomeworkRequest struct {
	Done *bool `json:"done" binding:"required"`
}

// ToggleHomework handles PUT /api/homework/:week/:id/done
func (rc *RefreshController) ToggleHomework(c *gin.Context) {
	week, ok := parseWeekParam(c, "week")
	if !ok {
		return
	}
	var req ToggleHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	outcome, err := rc.refresher.ToggleHomeworkDone(c.Request.Context(), "", week, c.Param("id"), *req.Done)
	if err != nil {
		respondAccountError(c, err, "toggle homework")
		return
	}
	respondOutcome(c, gin.H{"id": c.Param("id"), "done": *req.Done, "outcome": outcome}, outcome)
}

// RefreshChat handles POST /api/chats/:id/refresh
func (rc *RefreshController) RefreshChat(c *gin.Context) {
	outcome, err := rc.refresher.RefreshChatMessages(c.Request.Context(), "", c.Param("id"))
	if err != nil {
		respondAccountError(c, err, "refresh chat")
		return
	}
	respondOutcome(c, gin.H{"chat_id": c.Param("id"), "outcome": outcome}, outcome)
}

// respondOutcome maps a failed provider call to 502; every other outcome is
// a success.
func respondOutcome(c *gin.Context, data gin.H, outcome dispatch.Outcome) {
	if outcome == dispatch.Failed {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "provider request failed", Code: "provider_failed", Details: data})
		return
	}
	respondSuccess(c, string(outcome), data)
}
