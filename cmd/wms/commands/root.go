package commands

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wms/internal/api"
	"wms/internal/config"
	"wms/internal/logging"
	"wms/internal/session"
)

// app is the dependency graph shared by subcommands.
type app struct {
	home    string
	baseURL string
	timeout time.Duration
	verbose bool

	log    *zap.Logger
	store  *session.FileStore
	client *api.Client
	in     io.Reader
}

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Output goes to the command's
// writers so callers can capture it.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "wms",
		Short:         "Waste bin monitoring client for drivers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.home, "home", "", "session dir (default $WMS_HOME or ~/.wms)")
	root.PersistentFlags().StringVar(&a.baseURL, "server", "", "backend base URL (default $WMS_BASE_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "request timeout (default $WMS_TIMEOUT or 15s)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests")

	root.AddCommand(
		signupCmd(a), loginCmd(a), logoutCmd(a), whoamiCmd(a),
		binsCmd(a), profileCmd(a), navigateCmd(a), trackCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	config.LoadDotEnv()
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.home == "" {
		a.home = cfg.Home
	}
	if a.baseURL == "" {
		a.baseURL = cfg.BaseURL
	}
	if a.timeout <= 0 {
		a.timeout = cfg.Timeout
	}

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	if a.log, err = logging.New(cfg.Development(), level); err != nil {
		return err
	}

	a.store = session.NewFileStore(a.home)
	a.client, err = api.New(a.baseURL, a.timeout,
		api.WithLogger(a.log),
		api.WithTokenSource(a.store.AuthToken),
	)
	a.in = cmd.InOrStdin()
	return err
}
