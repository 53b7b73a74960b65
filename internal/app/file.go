package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/actiongrid/internal/ctxlog"
	"github.com/specialistvlad/actiongrid/internal/pipelinectx"
)

// FileConfig is the HCL configuration file. Every setting is optional.
//
//	search_path = ["./actions", "/studio/actions"]
//	log_level   = "debug"
//
//	sync {
//	  url       = "https://ui.example.com"
//	  namespace = "/actions"
//	}
//
//	context {
//	  project = "demo"
//	  extra   = { site = "paris" }
//	}
type FileConfig struct {
	SearchPath      []string      `hcl:"search_path,optional"`
	LogFormat       *string       `hcl:"log_format,optional"`
	LogLevel        *string       `hcl:"log_level,optional"`
	HealthcheckPort *int          `hcl:"healthcheck_port,optional"`
	StepByStep      *bool         `hcl:"step_by_step,optional"`
	Sync            *syncBlock    `hcl:"sync,block"`
	Context         *contextBlock `hcl:"context,block"`
}

type syncBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

type contextBlock struct {
	Project  string            `hcl:"project,optional"`
	Task     string            `hcl:"task,optional"`
	TaskType string            `hcl:"task_type,optional"`
	User     string            `hcl:"user,optional"`
	Extra    map[string]string `hcl:"extra,optional"`
}

// DecodeConfigFile parses and decodes a single HCL configuration file.
func DecodeConfigFile(ctx context.Context, filePath string) (*FileConfig, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding config file.", "path", filePath)
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}

	var config FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Successfully decoded config file.", "path", filePath)
	return &config, nil
}

// ApplyFile overrides cfg with the settings present in f.
func (c *Config) ApplyFile(f *FileConfig) error {
	if len(f.SearchPath) > 0 {
		c.SearchPath = f.SearchPath
	}
	if f.LogFormat != nil {
		c.LogFormat = *f.LogFormat
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.HealthcheckPort != nil {
		c.HealthcheckPort = *f.HealthcheckPort
	}
	if f.StepByStep != nil {
		c.StepByStep = *f.StepByStep
	}
	if f.Sync != nil {
		c.Sync.URL = f.Sync.URL
		c.Sync.InsecureSkipVerify = f.Sync.InsecureSkipVerify
		if f.Sync.Namespace != "" {
			c.Sync.Namespace = f.Sync.Namespace
		}
	}
	if f.Context != nil {
		over := pipelinectx.Context{
			Project:  f.Context.Project,
			Task:     f.Context.Task,
			TaskType: f.Context.TaskType,
			User:     f.Context.User,
		}
		if len(f.Context.Extra) > 0 {
			over.Extra = make(map[string]any, len(f.Context.Extra))
			for k, v := range f.Context.Extra {
				over.Extra[k] = v
			}
		}
		merged, err := c.Context.Override(over)
		if err != nil {
			return fmt.Errorf("applying config file context: %w", err)
		}
		c.Context = merged
	}
	return nil
}
