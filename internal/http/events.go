package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/schooldesk/internal/audit"
	"github.com/mrlokans/schooldesk/internal/refresh"
)

type RefreshEventsController struct {
	history   *audit.Service
	refresher *refresh.Service
}

func NewRefreshEventsController(history *audit.Service, refresher *refresh.Service) *RefreshEventsController {
	return &RefreshEventsController{history: history, refresher: refresher}
}

// List handles GET /api/refresh-events?limit=&offset=
// Events are those of the current account, newest first.
func (ec *RefreshEventsController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	account, err := ec.refresher.Current()
	if err != nil {
		respondAccountError(c, err, "refresh events")
		return
	}

	events, total, err := ec.history.GetEvents(account.LocalID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "refresh events")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(orEmpty(events), total, limit, offset))
}
