package cache

import (
	"strconv"
)

// Cache keys. Tickets and LastUpdated use the same strings.
const (
	KeyPeriods = "periods"
	KeyNews    = "news"
	KeyChats   = "chats"
)

func PeriodKey(name string) string {
	return "period:" + name
}

func WeekKey(week int) string {
	return "week:" + strconv.Itoa(week)
}

// SourceWeekKey addresses one imported source within a week.
func SourceWeekKey(week int, source string) string {
	return WeekKey(week) + ":" + source
}

func ChatKey(chatID string) string {
	return "chat:" + chatID
}

func CanteenKey(accountLocalID string) string {
	return "canteen:" + accountLocalID
}
