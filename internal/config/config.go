package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/exprmig/internal/engine"
	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/aretw0/exprmig/pkg/persistence/middleware"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Statistics groupings.
const (
	GroupByService    = "service"
	GroupBySubservice = "subservice"
)

var (
	// ErrMissingTarget is returned when the database or the collection is not set.
	ErrMissingTarget = errors.New("database and collection are required")
	// ErrInvalidStatistics is returned for an unknown statistics grouping.
	ErrInvalidStatistics = errors.New("invalid statistics grouping")
)

// Config is the full configuration of a migration run.
// Keys mirror the command line flags so that a file and the flags read the same.
type Config struct {
	Database           string `yaml:"database" json:"database" mapstructure:"database"`
	Collection         string `yaml:"collection" json:"collection" mapstructure:"collection"`
	MongoURI           string `yaml:"mongouri" json:"mongouri" mapstructure:"mongouri"`
	Translation        string `yaml:"translation" json:"translation" mapstructure:"translation"`
	Debug              bool   `yaml:"debug" json:"debug" mapstructure:"debug"`
	Commit             bool   `yaml:"commit" json:"commit" mapstructure:"commit"`
	ExpressionLanguage string `yaml:"expressionlanguage" json:"expressionlanguage" mapstructure:"expressionlanguage"`
	Statistics         string `yaml:"statistics" json:"statistics" mapstructure:"statistics"`
	OutputDir          string `yaml:"output_dir" json:"output_dir" mapstructure:"output_dir"`

	engine.Scope `yaml:",inline" mapstructure:",squash"`

	Backup  BackupConfig  `yaml:"backup" json:"backup" mapstructure:"backup"`
	Redis   RedisConfig   `yaml:"redis" json:"redis" mapstructure:"redis"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

// BackupConfig locates the backup store.
type BackupConfig struct {
	Dir string        `yaml:"dir" json:"dir" mapstructure:"dir"`
	TTL time.Duration `yaml:"ttl" json:"ttl" mapstructure:"ttl"`
	// EncryptionKey seals backup sets with AES-256-GCM when set (base64, 32 bytes).
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key" mapstructure:"encryption_key"`
	// FallbackKeys decrypt backup sets sealed before a key rotation.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys" mapstructure:"fallback_keys"`
}

// Encryption returns the parsed backup keys, or nil when backups are stored in clear.
func (b BackupConfig) Encryption() (*middleware.EncryptionConfig, error) {
	if b.EncryptionKey == "" {
		if len(b.FallbackKeys) > 0 {
			return nil, errors.New("backup fallback keys need an encryption key")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(b.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid backup encryption key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range b.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("invalid backup fallback key #%d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, nil
}

// RedisConfig enables the Redis backup store and run guard when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" mapstructure:"addr"`
	Password string `yaml:"password" json:"password" mapstructure:"password"`
	DB       int    `yaml:"db" json:"db" mapstructure:"db"`
}

// MetricsConfig enables the metrics endpoint and the textfile export.
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr" mapstructure:"addr"`
	File string `yaml:"file" json:"file" mapstructure:"file"`
}

// Default returns the configuration used when neither a file nor a flag sets a value.
func Default() Config {
	return Config{
		MongoURI:           "mongodb://localhost:27017/",
		ExpressionLanguage: string(domain.LanguageIgnore),
		Statistics:         GroupByService,
		OutputDir:          ".",
		Scope: engine.Scope{
			ServiceRegex:    ".*",
			SubserviceRegex: ".*",
			DeviceIDRegex:   ".*",
			EntityTypeRegex: ".*",
		},
		Backup: BackupConfig{
			Dir: filepath.Join(".exprmig", "backups"),
		},
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Decode merges a generic map into cfg. Values are weakly typed, so "true" and "1h" work.
func Decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// Policy returns the parsed expressionLanguage policy.
func (c Config) Policy() (domain.LanguagePolicy, error) {
	return domain.ParseLanguagePolicy(c.ExpressionLanguage)
}

// Validate enforces the configuration errors that must stop a run before any scan.
// It does not read the translation file.
func (c Config) Validate() error {
	if c.Database == "" || c.Collection == "" {
		return ErrMissingTarget
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	switch c.Statistics {
	case GroupByService, GroupBySubservice:
	default:
		return fmt.Errorf("%w: %q (use %s or %s)", ErrInvalidStatistics, c.Statistics, GroupByService, GroupBySubservice)
	}
	if c.Commit && c.Translation == "" {
		return domain.ErrTranslationRequired
	}
	if c.Backup.TTL < 0 {
		return fmt.Errorf("backup ttl must not be negative: %s", c.Backup.TTL)
	}
	if _, err := c.Backup.Encryption(); err != nil {
		return err
	}
	return nil
}

// LockKey names the run guard of the target collection.
func (c Config) LockKey() string {
	return c.Database + "." + c.Collection
}
