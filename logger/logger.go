// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if LogRotator != nil {
		LogRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsystem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
var (
	// BackendLog is the logging backend used to create all subsystem
	// loggers.
	BackendLog = btclog.NewBackend(logWriter{})

	// LogRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	LogRotator *rotator.Rotator

	rolldLog = BackendLog.Logger("ROLD")
	coorLog  = BackendLog.Logger("COOR")
	txmpLog  = BackendLog.Logger("TXMP")
	rldbLog  = BackendLog.Logger("RLDB")
	bcdbLog  = BackendLog.Logger("BCDB")
	apisLog  = BackendLog.Logger("APIS")
	utilLog  = BackendLog.Logger("UTIL")
)

// SubsystemTags is an enum of all sub system tags
var SubsystemTags = struct {
	ROLD,
	COOR,
	TXMP,
	RLDB,
	BCDB,
	APIS,
	UTIL string
}{
	ROLD: "ROLD",
	COOR: "COOR",
	TXMP: "TXMP",
	RLDB: "RLDB",
	BCDB: "BCDB",
	APIS: "APIS",
	UTIL: "UTIL",
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	SubsystemTags.ROLD: rolldLog,
	SubsystemTags.COOR: coorLog,
	SubsystemTags.TXMP: txmpLog,
	SubsystemTags.RLDB: rldbLog,
	SubsystemTags.BCDB: bcdbLog,
	SubsystemTags.APIS: apisLog,
	SubsystemTags.UTIL: utilLog,
}

// Get returns a logger of a specific sub system
func Get(tag string) (btclog.Logger, error) {
	logger, ok := subsystemLoggers[tag]
	if !ok {
		return nil, errors.Errorf("no logger for subsystem %s", tag)
	}
	return logger, nil
}

// InitLogRotator initializes the logging rotator to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotator variable is used.
func InitLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %s\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %s\n", err)
		os.Exit(1)
	}
	LogRotator = r
}

// SetLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns a slice of the supported subsystems for logging
// purposes.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	return subsystems
}
