package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/actiongrid/internal/app"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command names the subcommand to execute.
type Command string

const (
	CommandRun  Command = "run"
	CommandList Command = "list"
)

// Invocation is the parsed command line.
type Invocation struct {
	Command Command
	Config  *app.Config
}

// options mirror the flags; they are only applied when set explicitly so
// that the config file and the environment keep their precedence.
type options struct {
	searchPath      []string
	configFile      string
	taskType        string
	project         string
	user            string
	syncURL         string
	syncNamespace   string
	batch           bool
	stepByStep      bool
	logLevel        string
	logFormat       string
	healthcheckPort int
}

// Parse processes command-line arguments. It returns the invocation, a
// boolean indicating if the program should exit cleanly (help was shown),
// or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	var (
		opts   options
		result *Invocation
	)

	root := &cobra.Command{
		Use:   "actiongrid",
		Short: "Run actions: trees of steps and commands resolved from YAML definitions.",
		Long: `actiongrid resolves action definitions from a search path and runs
their commands in order. A remote UI connected over socket.io can follow the
run, edit it live and answer prompts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	flags := root.PersistentFlags()
	flags.StringSliceVar(&opts.searchPath, "search-path", nil, "Directories holding action definitions, first match wins.")
	flags.StringVar(&opts.configFile, "config", "", "Path to an HCL configuration file.")
	flags.StringVar(&opts.taskType, "task-type", "", "Task type selecting the `tasks` overlay of definitions.")
	flags.StringVar(&opts.project, "project", "", "Project of the pipeline context.")
	flags.StringVar(&opts.user, "user", "", "User of the pipeline context.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	runCmd := &cobra.Command{
		Use:   "run ACTION...",
		Short: "Resolve and run one or more actions",
		Example: `  actiongrid run publish
  actiongrid run publish render --search-path ./actions --task-type lighting
  actiongrid run publish --sync-url https://ui.example.com --healthcheck-port 8080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, actions []string) error {
			cfg, err := buildConfig(cmd, opts, actions)
			if err != nil {
				return err
			}
			result = &Invocation{Command: CommandRun, Config: cfg}
			return nil
		},
	}
	runFlags := runCmd.Flags()
	runFlags.StringVar(&opts.syncURL, "sync-url", "", "socket.io URL of the remote observer. Empty runs without sync.")
	runFlags.StringVar(&opts.syncNamespace, "sync-namespace", "/", "socket.io namespace of the remote observer.")
	runFlags.BoolVar(&opts.batch, "batch", false, "Never sync nor prompt, even when a sync URL is configured.")
	runFlags.BoolVar(&opts.stepByStep, "step-by-step", false, "Stop after one command.")
	runFlags.IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the actions found on the search path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(cmd, opts, nil)
			if err != nil {
				return err
			}
			result = &Invocation{Command: CommandList, Config: cfg}
			return nil
		},
	}

	root.AddCommand(runCmd, listCmd)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if result == nil {
		slog.Debug("No command executed, help was printed.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", result.Command)
	return result, false, nil
}

// buildConfig layers the configuration sources: defaults, config file,
// environment, then the flags set on the command line.
func buildConfig(cmd *cobra.Command, opts options, actions []string) (*app.Config, error) {
	cfg := app.DefaultConfig()

	if opts.configFile != "" {
		file, err := app.DecodeConfigFile(context.Background(), opts.configFile)
		if err != nil {
			return nil, &ExitError{Code: 2, Message: err.Error()}
		}
		if err := cfg.ApplyFile(file); err != nil {
			return nil, &ExitError{Code: 2, Message: err.Error()}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("search-path", func() { cfg.SearchPath = opts.searchPath })
	set("task-type", func() { cfg.Context.TaskType = opts.taskType })
	set("project", func() { cfg.Context.Project = opts.project })
	set("user", func() { cfg.Context.User = opts.user })
	set("log-format", func() { cfg.LogFormat = strings.ToLower(opts.logFormat) })
	set("log-level", func() { cfg.LogLevel = strings.ToLower(opts.logLevel) })
	set("sync-url", func() { cfg.Sync.URL = opts.syncURL })
	set("sync-namespace", func() { cfg.Sync.Namespace = opts.syncNamespace })
	set("batch", func() { cfg.Batch = opts.batch })
	set("step-by-step", func() { cfg.StepByStep = opts.stepByStep })
	set("healthcheck-port", func() { cfg.HealthcheckPort = opts.healthcheckPort })
	cfg.Actions = actions

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, nil
}
