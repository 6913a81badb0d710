package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"media-gallery/internal/kv"
	"media-gallery/internal/logging"
	"media-gallery/internal/poller"
	"media-gallery/internal/session"
	"media-gallery/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// ConfigFileEnv names the environment variable pointing at a TOML file.
const ConfigFileEnv = "GALLERY_CONFIG"

// Config holds all application configuration
type Config struct {
	Port             string
	MetricsPort      string
	MetricsEnabled   bool
	DatabaseDir      string
	MediaDir         string
	PollInterval     time.Duration
	PollDiff         string
	ScanDelay        time.Duration
	ProbeOrientation bool
	LogHealthChecks  bool
	LogBlobs         bool

	// Derived
	DatabasePath string
	ConfigFile   string
	ScanEnabled  bool
}

// fileConfig mirrors Config for TOML decoding. Unset keys keep the lower
// layer's value.
type fileConfig struct {
	Port             *string `toml:"port"`
	MetricsPort      *string `toml:"metrics_port"`
	MetricsEnabled   *bool   `toml:"metrics_enabled"`
	DatabaseDir      *string `toml:"database_dir"`
	MediaDir         *string `toml:"media_dir"`
	PollInterval     *string `toml:"poll_interval"`
	PollDiff         *string `toml:"poll_diff"`
	ScanDelay        *string `toml:"scan_delay"`
	ProbeOrientation *bool   `toml:"probe_orientation"`
	LogHealthChecks  *bool   `toml:"log_health_checks"`
	LogBlobs         *bool   `toml:"log_blobs"`
}

// settings is the string form of every option before parsing.
type settings struct {
	port             string
	metricsPort      string
	databaseDir      string
	mediaDir         string
	pollInterval     string
	pollDiff         string
	scanDelay        string
	metricsEnabled   bool
	probeOrientation bool
	logHealthChecks  bool
	logBlobs         bool
}

func defaultSettings() settings {
	return settings{
		port:             "8080",
		metricsPort:      "9090",
		databaseDir:      "/database",
		pollInterval:     poller.DefaultInterval.String(),
		pollDiff:         "count",
		scanDelay:        session.DefaultScanDelay.String(),
		metricsEnabled:   true,
		probeOrientation: false,
		logHealthChecks:  true,
	}
}

// LoadConfig loads and validates configuration, printing the startup banner
// and configuration sections as it goes.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	s := defaultSettings()

	configFile := os.Getenv(ConfigFileEnv)
	if configFile != "" {
		if err := applyFile(&s, configFile); err != nil {
			return nil, err
		}
		logging.Info("  Config file:         %s", configFile)
	}
	applyEnv(&s)

	logging.Info("  PORT:                %s", s.port)
	logging.Info("  METRICS_PORT:        %s", s.metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", s.metricsEnabled)
	logging.Info("  DATABASE_DIR:        %s", s.databaseDir)
	logging.Info("  MEDIA_DIR:           %s", valueOrUnset(s.mediaDir))
	logging.Info("  POLL_INTERVAL:       %s", s.pollInterval)
	logging.Info("  POLL_DIFF:           %s", s.pollDiff)
	logging.Info("  SCAN_DELAY:          %s", s.scanDelay)
	logging.Info("  PROBE_WORKERS:       %s", valueOrUnset(os.Getenv(workers.OverrideEnv)))
	logging.Info("  PROBE_ORIENTATION:   %v", s.probeOrientation)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", s.logHealthChecks)
	logging.Info("  LOG_BLOBS:           %v", s.logBlobs)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	config, err := s.resolve()
	if err != nil {
		return nil, err
	}
	config.ConfigFile = configFile

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Database directory (absolute): %s", config.DatabaseDir)

	if err := ensureDirectory(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	if err := testWriteAccess(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	if config.MediaDir != "" {
		logging.Info("  Media directory (absolute): %s", config.MediaDir)
		if info, err := os.Stat(config.MediaDir); err != nil || !info.IsDir() {
			logging.Warn("  Media directory unavailable, scanning disabled")
		} else {
			config.ScanEnabled = true
			logging.Info("  [OK] Media directory is readable")
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:    ENABLED (required)")
	logging.Info("    Scanning:    %s", enabledString(config.ScanEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// resolve parses durations and resolves paths.
func (s settings) resolve() (*Config, error) {
	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", s.pollInterval)
	if err != nil {
		return nil, err
	}
	scanDelay, err := time.ParseDuration(s.scanDelay)
	if err != nil || scanDelay < 0 {
		return nil, fmt.Errorf("invalid SCAN_DELAY %q", s.scanDelay)
	}
	if _, err := poller.DetectorFor(s.pollDiff); err != nil {
		return nil, fmt.Errorf("invalid POLL_DIFF: %w", err)
	}

	databaseDir, err := filepath.Abs(s.databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}

	mediaDir := s.mediaDir
	if mediaDir != "" {
		if mediaDir, err = filepath.Abs(mediaDir); err != nil {
			return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
		}
	}

	return &Config{
		Port:             s.port,
		MetricsPort:      s.metricsPort,
		MetricsEnabled:   s.metricsEnabled,
		DatabaseDir:      databaseDir,
		MediaDir:         mediaDir,
		PollInterval:     pollInterval,
		PollDiff:         strings.ToLower(strings.TrimSpace(s.pollDiff)),
		ScanDelay:        scanDelay,
		ProbeOrientation: s.probeOrientation,
		LogHealthChecks:  s.logHealthChecks,
		LogBlobs:         s.logBlobs,
		DatabasePath:     filepath.Join(databaseDir, kv.DefaultFileName),
	}, nil
}

func applyFile(s *settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&s.port, fc.Port)
	setString(&s.metricsPort, fc.MetricsPort)
	setString(&s.databaseDir, fc.DatabaseDir)
	setString(&s.mediaDir, fc.MediaDir)
	setString(&s.pollInterval, fc.PollInterval)
	setString(&s.pollDiff, fc.PollDiff)
	setString(&s.scanDelay, fc.ScanDelay)
	setBool(&s.metricsEnabled, fc.MetricsEnabled)
	setBool(&s.probeOrientation, fc.ProbeOrientation)
	setBool(&s.logHealthChecks, fc.LogHealthChecks)
	setBool(&s.logBlobs, fc.LogBlobs)
	return nil
}

func applyEnv(s *settings) {
	s.port = getEnv("PORT", s.port)
	s.metricsPort = getEnv("METRICS_PORT", s.metricsPort)
	s.databaseDir = getEnv("DATABASE_DIR", s.databaseDir)
	s.mediaDir = getEnv("MEDIA_DIR", s.mediaDir)
	s.pollInterval = getEnv("POLL_INTERVAL", s.pollInterval)
	s.pollDiff = getEnv("POLL_DIFF", s.pollDiff)
	s.scanDelay = getEnv("SCAN_DELAY", s.scanDelay)
	s.metricsEnabled = getEnvBool("METRICS_ENABLED", s.metricsEnabled)
	s.probeOrientation = getEnvBool("PROBE_ORIENTATION", s.probeOrientation)
	s.logHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", s.logHealthChecks)
	s.logBlobs = getEnvBool("LOG_BLOBS", s.logBlobs)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration", name, value)
	}
	return d, nil
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
