package cmd

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/autobrr/hldup/pkg/config"
	"github.com/autobrr/hldup/pkg/logger"
	"github.com/autobrr/hldup/pkg/runtime"
)

var (
	// Global flags
	FlagLogLevel     = 0
	FlagConfigFile   = "config.yaml"
	FlagConfigFolder = config.GetDefaultConfigDirectory("hldup", FlagConfigFile)
	FlagLogFile      = "activity.log"

	FlagDryRun bool
	FlagMode   string

	// Global vars
	initialized bool
)

// flagOverrides returns the config keys set explicitly on the command line.
func flagOverrides(flags *pflag.FlagSet) map[string]interface{} {
	overrides := make(map[string]interface{})

	if flags != nil && flags.Changed("dry-run") {
		overrides["dry_run"] = FlagDryRun
	}
	if FlagMode != "" {
		overrides["mode"] = FlagMode
	}

	return overrides
}

// inConfigFolder resolves relative file flags against the config folder.
func inConfigFolder(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(FlagConfigFolder, path)
}

func initCore(flags *pflag.FlagSet, showAppInfo bool) {
	configPath := inConfigFolder(FlagConfigFile)
	logPath := inConfigFolder(FlagLogFile)

	if err := config.Init(configPath, flagOverrides(flags)); err != nil {
		logrus.WithError(err).Fatal("Failed initialising config")
	}

	if err := logger.Init(logger.Config{
		Verbosity:  FlagLogLevel,
		File:       logPath,
		MaxSize:    config.Config.Log.MaxSize,
		MaxBackups: config.Config.Log.MaxBackups,
		MaxAge:     config.Config.Log.MaxAge,
	}); err != nil {
		logrus.WithError(err).Fatal("Failed initialising logger")
	}

	if !showAppInfo {
		return
	}

	log := logger.GetLogger("app")
	log.Infof("Using %s = %s (%s@%s)", "VERSION", runtime.Version, runtime.GitCommit, runtime.Timestamp)
	log.Infof("Using %s = %q", "CONFIG", configPath)
	log.Infof("Using %s = %q", "LOG", logPath)
	log.Infof("Using %s = %s", "MODE", config.Config.Mode)
	if config.Config.DryRun {
		log.Warn("Dry-run enabled")
	}
}
