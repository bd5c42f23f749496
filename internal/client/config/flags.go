package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
)

var knownFlags = []string{"-d", "-b", "-r", "-a", "-i", "-o", "-t", "-u", "-p", "-l"}

// parseFlags populates Config fields from command-line flags. Only the flags
// listed in knownFlags are passed to the FlagSet.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	fs.StringVar(&cfg.RemoteBackend, "b", cfg.RemoteBackend, "remote backend (grpc|postgres|memory)")
	fs.StringVar(&cfg.RemoteDSN, "r", cfg.RemoteDSN, "remote PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayAddr, "a", cfg.GatewayAddr, "address and port of the sync gateway")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "sync interval (in seconds)")
	onlineCheckInterval := fs.Int("o", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	remoteTimeout := fs.Int("t", int(cfg.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")
	fs.StringVar(&cfg.Username, "u", cfg.Username, "username for audit entries")
	fs.StringVar(&cfg.ClientInfo, "p", cfg.ClientInfo, "client description for system logs")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
}
