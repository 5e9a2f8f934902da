package profile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hrygo/openhours/server/timezone"
)

// Profile is the configuration to run the openhours command.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Timezone overrides the timezone declared in the hours file
	Timezone string
	// HoursFile points to the YAML/JSON/TOML file holding the weekly hours
	HoursFile string
	// Strict rejects malformed ranges instead of dropping them
	Strict bool
	// LogLevel is one of debug, info, warn, error
	LogLevel string
	// LogFormat is "text" or "json"
	LogFormat string
	// Version is the current version of the command
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode == "dev"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads unset fields from OPENHOURS_* environment variables.
func (p *Profile) FromEnv() {
	if p.Mode == "" {
		p.Mode = getEnvOrDefault("OPENHOURS_MODE", "prod")
	}
	if p.Timezone == "" {
		p.Timezone = os.Getenv("OPENHOURS_TIMEZONE")
	}
	if p.HoursFile == "" {
		p.HoursFile = os.Getenv("OPENHOURS_HOURS")
	}
	if !p.Strict {
		p.Strict = os.Getenv("OPENHOURS_STRICT") == "true"
	}
	if p.LogLevel == "" {
		p.LogLevel = getEnvOrDefault("OPENHOURS_LOG_LEVEL", "info")
	}
	if p.LogFormat == "" {
		p.LogFormat = getEnvOrDefault("OPENHOURS_LOG_FORMAT", "text")
	}
}

func checkHoursFile(path string) (string, error) {
	if path == "" {
		return "", errors.New("no hours file configured, set --hours or OPENHOURS_HOURS")
	}
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		path = absPath
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "unable to access hours file %s", path)
	}
	if info.IsDir() {
		return "", errors.Errorf("hours file %s is a directory", path)
	}
	return path, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "prod"
	}
	if p.LogFormat != "json" {
		p.LogFormat = "text"
	}

	hoursFile, err := checkHoursFile(p.HoursFile)
	if err != nil {
		slog.Error("failed to check hours file", slog.String("hours", p.HoursFile), slog.String("error", err.Error()))
		return err
	}
	p.HoursFile = hoursFile

	if p.Timezone != "" && !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("invalid timezone %q", p.Timezone)
	}
	return nil
}

// HoursFile is the decoded content of an hours file.
type HoursFile struct {
	Timezone string
	Hours    map[string][]string
}

// LoadHours reads an hours file. The format follows the file extension.
//
//	timezone: Europe/Paris
//	hours:
//	  monday: ["09:00-12:00", "13:00-17:00"]
//	  saturday: ["10:00-14:00"]
func LoadHours(path string) (*HoursFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read hours file %s", path)
	}

	if raw := v.Get("hours"); raw != nil {
		if _, ok := raw.(map[string]interface{}); !ok {
			return nil, errors.Errorf("hours in %s must map weekdays to ranges", path)
		}
	}

	hours := make(map[string][]string)
	for day := range v.GetStringMap("hours") {
		// Keys come back lowercased; GetStringSlice also accepts a single string.
		hours[day] = v.GetStringSlice("hours." + day)
	}

	return &HoursFile{
		Timezone: strings.TrimSpace(v.GetString("timezone")),
		Hours:    hours,
	}, nil
}
