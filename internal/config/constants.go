package config

const (
	// DefaultDatabasePath holds accounts, cache entries and refresh history.
	// The task queue lives next to it with a "-tasks" suffix.
	DefaultDatabasePath = "./schooldesk.db"

	// DefaultKeyFilePath stores the generated master key when
	// SCHOOLDESK_ENCRYPTION_KEY is not set.
	DefaultKeyFilePath = "./schooldesk.key"

	// DefaultRefreshSchedule refreshes every 30 minutes.
	DefaultRefreshSchedule = "*/30 * * * *"
)
