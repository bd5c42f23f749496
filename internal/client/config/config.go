package config

import (
	"os"
	"time"
)

// Remote backends accepted by RemoteBackend.
const (
	BackendGRPC     = "grpc"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds runtime settings for the client.
type Config struct {
	DatabasePath string

	RemoteBackend string
	RemoteDSN     string
	GatewayAddr   string

	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
	RemoteTimeout       time.Duration
	LegacyAuditInsert   bool

	Username   string
	ClientInfo string
	LogFile    string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "data/stockkeeper.db"
	c.RemoteBackend = BackendGRPC
	c.RemoteDSN = ""
	c.GatewayAddr = "127.0.0.1:50051"
	c.SyncInterval = 60 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.RemoteTimeout = 15 * time.Second
	c.LegacyAuditInsert = false
	c.Username = "local"
	c.ClientInfo = defaultClientInfo()
	c.LogFile = "data/stockkeeper.log"
}

func defaultClientInfo() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown"
	}
	return host
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if any) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
