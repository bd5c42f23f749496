package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of Config. Only keys present in the file
// override defaults.
type FileConfig struct {
	DatabasePath        *string         `json:"database_path" yaml:"database_path"`
	RemoteBackend       *string         `json:"remote_backend" yaml:"remote_backend"`
	RemoteDSN           *string         `json:"remote_dsn" yaml:"remote_dsn"`
	GatewayAddr         *string         `json:"gateway_addr" yaml:"gateway_addr"`
	SyncInterval        *timex.Duration `json:"sync_interval" yaml:"sync_interval"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RemoteTimeout       *timex.Duration `json:"remote_timeout" yaml:"remote_timeout"`
	LegacyAuditInsert   *bool           `json:"legacy_audit_insert" yaml:"legacy_audit_insert"`
	Username            *string         `json:"username" yaml:"username"`
	ClientInfo          *string         `json:"client_info" yaml:"client_info"`
	LogFile             *string         `json:"log_file" yaml:"log_file"`
	S3Endpoint          *string         `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region            *string         `json:"s3_region" yaml:"s3_region"`
	S3Bucket            *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3AccessKey         *string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey         *string         `json:"s3_secret_key" yaml:"s3_secret_key"`
}

// parseFile overlays the file given with -c/-config. Unreadable or malformed
// files panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch flagx.ConfigFormat(path) {
	case flagx.FormatYAML:
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(cfg)
}

func (c *FileConfig) apply(cfg *Config) {
	setString(&cfg.DatabasePath, c.DatabasePath)
	setString(&cfg.RemoteBackend, c.RemoteBackend)
	setString(&cfg.RemoteDSN, c.RemoteDSN)
	setString(&cfg.GatewayAddr, c.GatewayAddr)
	setString(&cfg.Username, c.Username)
	setString(&cfg.ClientInfo, c.ClientInfo)
	setString(&cfg.LogFile, c.LogFile)
	setString(&cfg.S3Endpoint, c.S3Endpoint)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3AccessKey, c.S3AccessKey)
	setString(&cfg.S3SecretKey, c.S3SecretKey)

	if c.SyncInterval != nil {
		cfg.SyncInterval = c.SyncInterval.Duration
	}
	if c.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = c.OnlineCheckInterval.Duration
	}
	if c.RemoteTimeout != nil {
		cfg.RemoteTimeout = c.RemoteTimeout.Duration
	}
	if c.LegacyAuditInsert != nil {
		cfg.LegacyAuditInsert = *c.LegacyAuditInsert
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
