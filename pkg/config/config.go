package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charlie0129/corrcal/pkg/calcium"
)

type Config interface {
	DefaultUnit() calcium.Unit
	Theme() Theme
	AllowNonRootAccess() bool
	MaxSessions() int
	SessionTTL() time.Duration
	RateLimit() int

	SetDefaultUnit(calcium.Unit)
	SetTheme(Theme)
	SetAllowNonRootAccess(bool)
	SetMaxSessions(int)
	SetSessionTTL(time.Duration)
	SetRateLimit(int)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}

// Theme is the display theme preference of the surrounding application.
// corrcal only stores it; nothing in the calculation depends on it.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q, expected light, dark or system", s)
	}
}
