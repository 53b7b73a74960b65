package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/actiongrid/internal/pipelinectx"
)

// EnvSearchPath holds the action search path, in the os.PathListSeparator
// separated form of PATH.
const EnvSearchPath = "ACTIONGRID_SEARCH_PATH"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// SearchPath is the ordered list of directories holding action
	// definitions.
	SearchPath []string `validate:"required,min=1,dive,required"`
	// Actions are the names of the actions to run.
	Actions []string `validate:"dive,required"`

	Context pipelinectx.Context
	Sync    SyncConfig

	// Batch disables the sync channel even when a sync URL is configured.
	Batch      bool
	StepByStep bool

	LogFormat       string `validate:"oneof=text json"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"gte=0,lte=65535"`
}

// SyncConfig describes the remote observer connection.
type SyncConfig struct {
	URL                string `validate:"omitempty,url"`
	Namespace          string
	InsecureSkipVerify bool
}

// DefaultConfig returns the configuration used before any source is applied.
func DefaultConfig() Config {
	return Config{
		SearchPath: []string{"."},
		Sync:       SyncConfig{Namespace: "/"},
		LogFormat:  "text",
		LogLevel:   "info",
	}
}

// ApplyEnv overrides cfg with the environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSearchPath); ok && v != "" {
		c.SearchPath = filepath.SplitList(v)
	}
	merged, err := c.Context.Override(pipelinectx.FromEnv(lookup))
	if err != nil {
		return fmt.Errorf("applying environment context: %w", err)
	}
	c.Context = merged
	return nil
}

// Syncing reports whether runs are attached to a remote observer.
func (c *Config) Syncing() bool {
	return !c.Batch && c.Sync.URL != ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		msgs := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			msgs[i] = describe(fe)
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return &cfg, nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "min":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed the %q check", field, fe.Tag())
	}
}
