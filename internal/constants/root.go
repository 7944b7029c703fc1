package constants

import "time"

const (
	AppName            = "limitless"
	Version            = "v0.3.0"
	DefaultKeyringUser = "database-connection"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is used for every createdAt/updatedAt/timestamp field
	TimestampFormat = time.RFC3339Nano

	// Server defaults
	DefaultAddr     = ":3001"
	DefaultDataDir  = "~/.openclaw/data/shared"
	DefaultTimezone = "Local"

	// Storage kinds
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	// SQLiteFileName is the database file created inside the data directory
	SQLiteFileName = "limitless.db"

	// ConnectionEnvVar holds the PostgreSQL connection string when not using the keyring
	ConnectionEnvVar = "LIMITLESS_DB_CONNECTION"

	// Archive constants
	HistoryDirName       = "history"
	DefaultRetentionDays = 90

	// Append-only logs
	EventsLogName = "events"
	BossLogName   = "boss-encounters"
	LogFileSuffix = ".jsonl"

	// Static reference data
	BadgesFileName   = "badges.json"
	MissionsFileName = "missions.json"

	// MissionHistoryLimit bounds the resolved mission history
	MissionHistoryLimit = 500
)
