package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name appended when a directory is given.
const FileName = ".ntfy.conf"

// DefaultBaseURL is the gateway used when no base URL is configured.
const DefaultBaseURL = "https://ntfy.sh"

const (
	sectionTargets  = "notifier_init"
	sectionDefaults = "notify_defaults"

	defaultTitle = "Message from ntfy-wrapper"
	defaultTags  = "fire"
	defaultIcon  = "https://raw.githubusercontent.com/vict0rsch/ntfy-wrapper/main/assets/logo.png"
)

var (
	// ErrNotFound is returned when a configuration file is required but absent.
	ErrNotFound = errors.New("configuration file not found")
	// ErrUnknownDefault is returned when a message default key is not in the allow-list.
	ErrUnknownDefault = errors.New("unknown message default key")
)

// allowedDefaults is the closed set of message default keys, lower-cased as
// they appear in the configuration file.
var allowedDefaults = map[string]struct{}{
	"title":    {},
	"priority": {},
	"tags":     {},
	"click":    {},
	"attach":   {},
	"actions":  {},
	"icon":     {},
}

// header is always written at the top of the configuration file.
const header = `# This config file contains 2 sections:
# [notifier_init] and [notify_defaults].
# Values in [notifier_init] can be strings or lists of strings (comma-separated).
# Values in [notify_defaults] are best understood from the ntfy documentation:
# https://ntfy.sh/docs/publish/
#
# Nota Bene: a topic is kind of a password: anyone with the topic id can send
# messages to your device, so protect it and make sure to remove this config
# file from your version control system.
#
# Example:
# [notifier_init]
# topics = my-secret-topic-1, mysecrettopic2
# emails = you@foo.bar
#
# [notify_defaults]
# title = Message from ntfy-wrapper
# priority = 0
# tags = fire

`

// Config is the layered configuration owned by a notifier: target identifiers
// plus allow-listed message defaults.
type Config struct {
	Topics   []string
	Emails   []string
	BaseURLs []string
	Defaults map[string]string
}

// Default returns the built-in configuration used when no file exists.
func Default() Config {
	return Config{
		Defaults: map[string]string{
			"title": defaultTitle,
			"tags":  defaultTags,
			"icon":  defaultIcon,
		},
	}
}

// Clone returns a deep copy so callers can mutate the result freely.
func (c Config) Clone() Config {
	out := Config{
		Topics:   append([]string(nil), c.Topics...),
		Emails:   append([]string(nil), c.Emails...),
		BaseURLs: append([]string(nil), c.BaseURLs...),
		Defaults: make(map[string]string, len(c.Defaults)),
	}
	for k, v := range c.Defaults {
		out.Defaults[k] = v
	}
	return out
}

// ValidateDefaults checks every key against the message default allow-list.
func ValidateDefaults(defaults map[string]string) error {
	for k := range defaults {
		if _, ok := allowedDefaults[strings.ToLower(k)]; !ok {
			return fmt.Errorf("%w: %q (allowed: %s)", ErrUnknownDefault, k, strings.Join(AllowedDefaultKeys(), ", "))
		}
	}
	return nil
}

// AllowedDefaultKeys returns the allow-list in stable order, for diagnostics.
func AllowedDefaultKeys() []string {
	keys := make([]string, 0, len(allowedDefaults))
	for k := range allowedDefaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolvePath resolves where the configuration file lives.
// An empty path means the current working directory; a directory gets
// FileName appended; anything else is used verbatim.
func ResolvePath(path string) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return filepath.Join(cwd, FileName), nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, FileName), nil
	}
	return path, nil
}

// Load reads the configuration file at path. A missing file is not an error:
// the built-in defaults are returned instead.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("stat config file: %w", err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg := Config{Defaults: map[string]string{}}
	if sec, err := file.GetSection(sectionTargets); err == nil {
		if sec.HasKey("topics") {
			cfg.Topics = SplitList(sec.Key("topics").String())
		}
		if sec.HasKey("emails") {
			cfg.Emails = SplitList(sec.Key("emails").String())
		}
		if sec.HasKey("base_url") {
			cfg.BaseURLs = SplitList(sec.Key("base_url").String())
		}
	}
	if sec, err := file.GetSection(sectionDefaults); err == nil {
		for _, key := range sec.Keys() {
			cfg.Defaults[strings.ToLower(key.Name())] = strings.TrimSpace(key.Value())
		}
	}

	if err := ValidateDefaults(cfg.Defaults); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Write serializes cfg back to path, always prefixed by the documentation
// header. Empty target lists are omitted entirely rather than written as
// empty keys, so Load(Write(p, c)) round-trips c.
func Write(path string, cfg Config) error {
	if err := ValidateDefaults(cfg.Defaults); err != nil {
		return err
	}

	file := ini.Empty()
	targets, err := file.NewSection(sectionTargets)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if len(cfg.Topics) > 0 {
		targets.Key("topics").SetValue(strings.Join(cfg.Topics, ", "))
	}
	if len(cfg.Emails) > 0 {
		targets.Key("emails").SetValue(strings.Join(cfg.Emails, ", "))
	}
	if len(cfg.BaseURLs) > 0 {
		targets.Key("base_url").SetValue(strings.Join(cfg.BaseURLs, ", "))
	}

	defaults, err := file.NewSection(sectionDefaults)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	keys := make([]string, 0, len(cfg.Defaults))
	for k := range cfg.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		defaults.Key(strings.ToLower(k)).SetValue(cfg.Defaults[k])
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	return nil
}

// Remove deletes the configuration file at path.
func Remove(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.Remove(path)
}

// SplitList normalizes a comma-separated scalar into a list: values are
// trimmed of surrounding whitespace and empty values are dropped.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// LoadDefaultsFile loads a YAML mapping of message defaults, used by the CLI
// to apply one-shot overrides without touching the persisted configuration.
func LoadDefaultsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defaults file: %w", err)
	}

	defaults := map[string]string{}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("parse defaults file: %w", err)
	}

	normalized := make(map[string]string, len(defaults))
	for k, v := range defaults {
		normalized[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	if err := ValidateDefaults(normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}
