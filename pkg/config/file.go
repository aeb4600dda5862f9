package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/corrcal/pkg/calcium"
	"github.com/charlie0129/corrcal/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		DefaultUnit:        ptr.To(calcium.MgDl),
		Theme:              ptr.To(ThemeSystem),
		AllowNonRootAccess: ptr.To(false),
		MaxSessions:        ptr.To(128),
		SessionTTLMinutes:  ptr.To(60),
		// Requests per second accepted by the daemon. 0 disables limiting.
		RateLimit: ptr.To(50),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	DefaultUnit        *calcium.Unit `json:"defaultUnit,omitempty"`
	Theme              *Theme        `json:"theme,omitempty"`
	AllowNonRootAccess *bool         `json:"allowNonRootAccess,omitempty"`
	MaxSessions        *int          `json:"maxSessions,omitempty"`
	SessionTTLMinutes  *int          `json:"sessionTTLMinutes,omitempty"`
	RateLimit          *int          `json:"rateLimit,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		DefaultUnit:        ptr.To(c.DefaultUnit()),
		Theme:              ptr.To(c.Theme()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		MaxSessions:        ptr.To(c.MaxSessions()),
		SessionTTLMinutes:  ptr.To(int(c.SessionTTL() / time.Minute)),
		RateLimit:          ptr.To(c.RateLimit()),
	}

	return rawConfig, nil
}

// valueOr reads a field of the loaded config, falling back to the default.
func valueOr[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if v := field(f.c); v != nil {
		return *v
	}
	return *field(defaultFileConfig)
}

func (f *File) set(apply func(*RawFileConfig)) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	apply(f.c)
}

func (f *File) DefaultUnit() calcium.Unit {
	return valueOr(f, func(c *RawFileConfig) *calcium.Unit { return c.DefaultUnit })
}

func (f *File) Theme() Theme {
	return valueOr(f, func(c *RawFileConfig) *Theme { return c.Theme })
}

func (f *File) AllowNonRootAccess() bool {
	return valueOr(f, func(c *RawFileConfig) *bool { return c.AllowNonRootAccess })
}

func (f *File) MaxSessions() int {
	return valueOr(f, func(c *RawFileConfig) *int { return c.MaxSessions })
}

func (f *File) SessionTTL() time.Duration {
	return time.Duration(valueOr(f, func(c *RawFileConfig) *int { return c.SessionTTLMinutes })) * time.Minute
}

func (f *File) RateLimit() int {
	return valueOr(f, func(c *RawFileConfig) *int { return c.RateLimit })
}

func (f *File) SetDefaultUnit(u calcium.Unit) {
	f.set(func(c *RawFileConfig) { c.DefaultUnit = &u })
}

func (f *File) SetTheme(t Theme) {
	if _, err := ParseTheme(string(t)); err != nil {
		panic(err)
	}

	f.set(func(c *RawFileConfig) { c.Theme = &t })
}

func (f *File) SetAllowNonRootAccess(b bool) {
	f.set(func(c *RawFileConfig) { c.AllowNonRootAccess = &b })
}

func (f *File) SetMaxSessions(i int) {
	if i < 1 {
		panic("max sessions must be at least 1")
	}

	f.set(func(c *RawFileConfig) { c.MaxSessions = &i })
}

func (f *File) SetSessionTTL(d time.Duration) {
	if d < time.Minute {
		panic("session ttl must be at least one minute")
	}

	minutes := int(d / time.Minute)
	f.set(func(c *RawFileConfig) { c.SessionTTLMinutes = &minutes })
}

func (f *File) SetRateLimit(i int) {
	if i < 0 {
		panic("rate limit must not be negative")
	}

	f.set(func(c *RawFileConfig) { c.RateLimit = &i })
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing file means defaults. Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// json.Decoder cannot tell an empty file from a truncated one.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"defaultUnit":        f.DefaultUnit().String(),
		"theme":              f.Theme(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"maxSessions":        f.MaxSessions(),
		"sessionTTL":         f.SessionTTL().String(),
		"rateLimit":          f.RateLimit(),
	}
}

// validate applies the same bounds as the setters.
func (c *RawFileConfig) validate() error {
	if c.Theme != nil {
		if _, err := ParseTheme(string(*c.Theme)); err != nil {
			return err
		}
	}
	if c.MaxSessions != nil && *c.MaxSessions < 1 {
		return fmt.Errorf("maxSessions must be at least 1, got %d", *c.MaxSessions)
	}
	if c.SessionTTLMinutes != nil && *c.SessionTTLMinutes < 1 {
		return fmt.Errorf("sessionTTLMinutes must be at least 1, got %d", *c.SessionTTLMinutes)
	}
	if c.RateLimit != nil && *c.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative, got %d", *c.RateLimit)
	}
	return nil
}
