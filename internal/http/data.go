package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/refresh"
)

// DataController serves the cache of the current account. It never calls a
// provider: a key that was never fetched is a 404, a fetched key with no
// entries is an empty list.
type DataController struct {
	stores    *cache.Set
	refresher *refresh.Service
}

func NewDataController(stores *cache.Set, refresher *refresh.Service) *DataController {
	return &DataController{stores: stores, refresher: refresher}
}

func respondNotCached(c *gin.Context, what string) {
	respondError(c, http.StatusNotFound, "not_cached", what+" not cached, refresh first")
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// current resolves the current account or writes the error response.
func (dc *DataController) current(c *gin.Context) (entities.Account, bool) {
	account, err := dc.refresher.Current()
	if err != nil {
		respondAccountError(c, err, "resolve current account")
		return entities.Account{}, false
	}
	return account, true
}

// resolveWeek turns week 0 into the current week of account.
func (dc *DataController) resolveWeek(c *gin.Context) (int, bool) {
	account, ok := dc.current(c)
	if !ok {
		return 0, false
	}
	week, ok := parseWeekParam(c, "week")
	if !ok {
		return 0, false
	}
	if week == 0 {
		week = dc.refresher.CurrentWeek(account)
	}
	return week, true
}

// Periods handles GET /api/periods
func (dc *DataController) Periods(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"grades":     dc.stores.Grades.PeriodList(),
		"attendance": dc.stores.Attendance.PeriodList(),
	})
}

// Grades handles GET /api/grades/:period
// "current" selects the selected or default period.
func (dc *DataController) Grades(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	period := c.Param("period")
	if period == "current" {
		period = dc.stores.Grades.PeriodList().Current()
	}
	if period == "" {
		respondNotCached(c, "grade periods")
		return
	}

	grades, ok := dc.stores.Grades.Grades(period)
	if !ok {
		respondNotCached(c, "grades for "+period)
		return
	}
	averages, _ := dc.stores.Grades.Averages(period)
	c.JSON(http.StatusOK, gin.H{
		"period":   period,
		"grades":   orEmpty(grades),
		"averages": averages,
	})
}

// Attendance handles GET /api/attendance/:period
func (dc *DataController) Attendance(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	period := c.Param("period")
	if period == "current" {
		period = dc.stores.Attendance.PeriodList().Current()
	}

	attendance, ok := dc.stores.Attendance.Attendance(period)
	if period == "" || !ok {
		respondNotCached(c, "attendance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "attendance": attendance})
}

// Homework handles GET /api/homework/:week
func (dc *DataController) Homework(c *gin.Context) {
	week, ok := dc.resolveWeek(c)
	if !ok {
		return
	}
	homework, ok := dc.stores.Homework.Homework(week)
	if !ok {
		respondNotCached(c, "homework")
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": week, "homework": orEmpty(homework)})
}

// Timetable handles GET /api/timetable/:week
func (dc *DataController) Timetable(c *gin.Context) {
	week, ok := dc.resolveWeek(c)
	if !ok {
		return
	}
	classes, ok := dc.stores.Timetable.Classes(week)
	if !ok {
		respondNotCached(c, "timetable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": week, "classes": orEmpty(classes)})
}

// News handles GET /api/news
func (dc *DataController) News(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	news, ok := dc.stores.News.News()
	if !ok {
		respondNotCached(c, "news")
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": orEmpty(news)})
}

// Canteen handles GET /api/canteen
// Balances of linked accounts are included.
func (dc *DataController) Canteen(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": orEmpty(dc.stores.Canteen.All())})
}

// Chats handles GET /api/chats
func (dc *DataController) Chats(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	chats, ok := dc.stores.Chats.Chats()
	if !ok {
		respondNotCached(c, "chats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": orEmpty(chats)})
}

// ChatMessages handles GET /api/chats/:id/messages
func (dc *DataController) ChatMessages(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	chatID := c.Param("id")
	messages, ok := dc.stores.Chats.Messages(chatID)
	if !ok {
		respondNotCached(c, "messages of chat "+chatID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "messages": orEmpty(messages)})
}

type SelectPeriodRequest struct {
	Period string `json:"period" binding:"required"`
}

// SelectGradesPeriod handles PUT /api/periods/grades
// The selection must name a cached period.
func (dc *DataController) SelectGradesPeriod(c *gin.Context) {
	if _, ok := dc.current(c); !ok {
		return
	}
	var req SelectPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, ok := entities.FindPeriod(dc.stores.Grades.PeriodList().Periods, req.Period); !ok {
		respondNotFound(c, "period "+req.Period)
		return
	}
	if err := dc.stores.Grades.SelectPeriod(c.Request.Context(), req.Period); err != nil {
		respondInternalError(c, err, "select period")
		return
	}
	respondSuccess(c, "period selected", dc.stores.Grades.PeriodList())
}
