package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates the local API. Read endpoints serve the cache of the
// current account; write endpoints switch accounts or trigger refreshes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	healthController := NewHealthController(cfg.Database, cfg.Accounts, cfg.Version)
	router.GET("/health", healthController.Status)

	api := router.Group("/api")

	accountsController := NewAccountsController(cfg.Accounts, cfg.Gate, cfg.Settings)
	api.GET("/accounts", accountsController.List)
	api.POST("/accounts/:id/switch", accountsController.Switch)
	api.DELETE("/accounts/:id", accountsController.Remove)
	api.POST("/accounts/logout", accountsController.Logout)
	api.PATCH("/accounts/current", accountsController.UpdateCurrent)

	dataController := NewDataController(cfg.Stores, cfg.Refresher)
	api.GET("/periods", dataController.Periods)
	api.PUT("/periods/grades", dataController.SelectGradesPeriod)
	api.GET("/grades/:period", dataController.Grades)
	api.GET("/attendance/:period", dataController.Attendance)
	api.GET("/homework/:week", dataController.Homework)
	api.GET("/timetable/:week", dataController.Timetable)
	api.GET("/news", dataController.News)
	api.GET("/chats", dataController.Chats)
	api.GET("/chats/:id/messages", dataController.ChatMessages)
	api.GET("/canteen", dataController.Canteen)

	refreshController := NewRefreshController(cfg.Refresher, cfg.TaskClient)
	api.POST("/refresh/:domain", refreshController.Refresh)
	api.POST("/calendars/import", refreshController.ImportCalendars)
	api.DELETE("/calendars", refreshController.ForgetCalendar)
	api.PUT("/homework/:week/:id/done", refreshController.ToggleHomework)
	api.POST("/chats/:id/refresh", refreshController.RefreshChat)

	if cfg.History != nil {
		eventsController := NewRefreshEventsController(cfg.History, cfg.Refresher)
		api.GET("/refresh-events", eventsController.List)
	}

	if cfg.Settings != nil {
		settingsController := NewSettingsController(cfg.Settings, cfg.Scheduler)
		api.GET("/settings/refresh", settingsController.GetRefresh)
		api.PUT("/settings/refresh", settingsController.UpdateRefresh)
		api.DELETE("/settings/refresh", settingsController.ResetRefresh)
	}

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
