package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the attendance service.
type Config struct {
	HTTPPort             int
	SQLiteDSN            string
	SessionSecret        string
	SessionTTL           time.Duration
	AdminEmails          []string
	LongWorkThresholdMin int
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:             8080,
		SQLiteDSN:            "file:attendance.db?_foreign_keys=on",
		SessionTTL:           24 * time.Hour,
		LongWorkThresholdMin: 600,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ATTENDANCE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ATTENDANCE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ATTENDANCE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("ATTENDANCE_SESSION_SECRET")); secret == "" {
		missing = append(missing, "ATTENDANCE_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ATTENDANCE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ATTENDANCE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if emails := strings.TrimSpace(os.Getenv("ATTENDANCE_ADMIN_EMAILS")); emails != "" {
		for _, email := range strings.Split(emails, ",") {
			email = strings.TrimSpace(email)
			if email == "" {
				continue
			}
			cfg.AdminEmails = append(cfg.AdminEmails, strings.ToLower(email))
		}
	}

	if thresholdValue := strings.TrimSpace(os.Getenv("ATTENDANCE_LONG_WORK_THRESHOLD")); thresholdValue != "" {
		threshold, err := strconv.Atoi(thresholdValue)
		if err != nil || threshold <= 0 {
			invalid = append(invalid, "ATTENDANCE_LONG_WORK_THRESHOLD")
		} else {
			cfg.LongWorkThresholdMin = threshold
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// IsAdminEmail reports whether the given email address belongs to the
// configured administrator list. Comparison is case insensitive.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}
