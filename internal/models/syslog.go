package models

import "time"

type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// SystemLogEntry is a write-once diagnostic record kept only in the local
// store.
type SystemLogEntry struct {
	ID               string     `json:"id"`
	Timestamp        time.Time  `json:"timestamp"`
	Level            LogLevel   `json:"log_level"`
	ErrorMessage     string     `json:"error_message"`
	Context          string     `json:"context,omitempty"`
	FullErrorDetails string     `json:"full_error_details,omitempty"`
	PhoneInfo        string     `json:"phone_info,omitempty"`
	LastSyncedAt     *time.Time `json:"last_synced_at,omitempty"`
}
