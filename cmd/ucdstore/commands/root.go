// Package commands implements the CLI commands for ucdstore.
package commands

import (
	"context"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"go.trai.ch/ucdstore/internal/app"
	"go.trai.ch/ucdstore/internal/build"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/engine/analyze"
	"go.trai.ch/ucdstore/internal/engine/compare"
	"go.trai.ch/ucdstore/internal/engine/mirror"
	"go.trai.ch/ucdstore/internal/engine/store"
	"go.trai.ch/ucdstore/internal/engine/syncer"
	"go.trai.ch/ucdstore/internal/ui/render"
)

// Application is the part of app.App the commands use.
type Application interface {
	Configure(path string, o app.Overrides) error
	Init(ctx context.Context, opts app.InitOptions) ([]string, error)
	Mirror(ctx context.Context, opts mirror.Options) (*domain.MirrorReport, error)
	Sync(ctx context.Context, opts syncer.Options) (*domain.SyncResult, error)
	Analyze(ctx context.Context, opts analyze.Options) (*domain.AnalysisReport, error)
	Compare(ctx context.Context, opts compare.Options) (*domain.VersionComparison, error)
	Verify(ctx context.Context, opts store.VerifyOptions) (*domain.VerifyResult, error)
	GetFile(ctx context.Context, version, path string) ([]byte, error)
	ListFiles(ctx context.Context, version string) ([]string, error)
	FileTree(ctx context.Context, version string) ([]domain.FileNode, error)
	Handler() (http.Handler, error)
}

var _ Application = (*app.App)(nil)

// CLI represents the command line interface for ucdstore.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	json    bool
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "ucdstore",
		Short:         "Mirror and inspect Unicode Character Database releases",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to the config file (default ./"+domain.ConfigFileName+")")
	flags.StringP("store", "s", "", "Store root directory")
	flags.String("backend", "", "Storage backend: fs, memory or http")
	flags.String("remote", "", "Base URL of a raw file proxy for the http backend")
	flags.String("api", "", "Base URL of the UCD API")
	flags.Int("concurrency", 0, "Maximum number of concurrent downloads")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-file", "", "Also write logs to this rotated file")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.BoolVar(&c.json, "json", false, "Print results as JSON")
	flags.BoolP("quiet", "q", false, "Only log warnings and errors")

	rootCmd.PersistentPreRunE = c.configure

	rootCmd.AddCommand(c.newInitCmd())
	rootCmd.AddCommand(c.newMirrorCmd())
	rootCmd.AddCommand(c.newSyncCmd())
	rootCmd.AddCommand(c.newAnalyzeCmd())
	rootCmd.AddCommand(c.newCompareCmd())
	rootCmd.AddCommand(c.newVerifyCmd())
	rootCmd.AddCommand(c.newGetCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "version", "help":
		return nil
	}
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	o := app.Overrides{}
	o.StorePath, _ = flags.GetString("store")
	o.Backend, _ = flags.GetString("backend")
	o.Remote, _ = flags.GetString("remote")
	o.APIURL, _ = flags.GetString("api")
	o.Concurrency, _ = flags.GetInt("concurrency")
	o.LogLevel, _ = flags.GetString("log-level")
	o.LogFile, _ = flags.GetString("log-file")
	o.JSONLogs, _ = flags.GetBool("log-json")
	o.Quiet, _ = flags.GetBool("quiet")
	return c.app.Configure(path, o)
}

func (c *CLI) renderer(cmd *cobra.Command) *render.Renderer {
	return render.New(cmd.OutOrStdout(), c.json)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the standard and error output of the root command.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}
