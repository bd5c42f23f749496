// Package config loads runtime configuration for the stockkeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   path of the local SQLite database
//	-b string   remote backend: grpc, postgres or memory
//	-r string   PostgreSQL DSN for the postgres backend
//	-a string   address:port of the sync gateway
//	-i int      background sync interval (seconds), 0 disables it
//	-o int      online status check interval (seconds)
//	-t int      timeout of a single remote call (seconds)
//	-u string   username written to audit entries
//	-p string   client description written to system logs
//	-l string   log file, empty logs to stderr
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "database_path": "data/stockkeeper.db",
//	  "remote_backend": "grpc",
//	  "gateway_addr": "127.0.0.1:50051",
//	  "sync_interval": "60s",
//	  "legacy_audit_insert": false,
//	  "s3_bucket": "stock-backups"
//	}
package config
