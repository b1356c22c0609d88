package main

import (
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/rollupnet/rollupd/params"
	"github.com/rollupnet/rollupd/util"
)

const (
	defaultLogFilename  = "rollupd.log"
	defaultLogLevel     = "info"
	defaultTickInterval = 10 * time.Second
)

var (
	defaultHomeDir = util.AppDataDir("rollupd", false)
)

// config defines the configuration options for rollupd.
type config struct {
	DataDir          string        `long:"datadir" description:"Directory to store data"`
	LogLevel         string        `long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Devnet           bool          `long:"devnet" description:"Use the development network rollup shape"`
	PublishInterval  time.Duration `long:"publish-interval" description:"Base publish interval; overrides the network default"`
	TickInterval     time.Duration `long:"tick-interval" description:"Interval between coordinator ticks"`
	APIListen        string        `long:"api-listen" description:"Start the HTTP API server on this address (disabled if empty)"`
	DBAddress        string        `long:"dbaddress" description:"API server database address" default:"localhost:3306"`
	DBUser           string        `long:"dbuser" description:"API server database user"`
	DBPassword       string        `long:"dbpassword" description:"API server database password"`
	DBName           string        `long:"dbname" description:"API server database name" default:"rollupd"`
	MigrationsPath   string        `long:"migrations-path" description:"Path to the API server schema migrations" default:"apiserver/migrations"`
	Migrate          bool          `long:"migrate" description:"Migrate the API server database to the latest version and exit"`

	activeParams params.Params
}

// parseConfig parses the command line and resolves the active deployment
// parameters.
func parseConfig() (*config, error) {
	cfg := &config{
		DataDir:      defaultHomeDir,
		LogLevel:     defaultLogLevel,
		TickInterval: defaultTickInterval,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	cfg.activeParams = params.MainnetParams
	if cfg.Devnet {
		cfg.activeParams = params.DevnetParams
	}
	if cfg.PublishInterval != 0 {
		if cfg.PublishInterval < 0 {
			return nil, errors.New("--publish-interval may not be negative")
		}
		cfg.activeParams.PublishInterval = cfg.PublishInterval
	}
	if cfg.TickInterval <= 0 {
		return nil, errors.New("--tick-interval must be positive")
	}
	if cfg.APIListen != "" && cfg.DBUser == "" {
		return nil, errors.New("--dbuser is required when --api-listen is set")
	}
	return cfg, nil
}

// logFile returns the path of the daemon log file.
func (cfg *config) logFile() string {
	return filepath.Join(cfg.DataDir, "logs", defaultLogFilename)
}
