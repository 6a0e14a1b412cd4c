// Package commands implements the CLI commands for intellitip.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/intellitip/internal/app"
	"go.trai.ch/intellitip/internal/build"
)

// CLI represents the command line interface for intellitip.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	root     string
	settings string
	debug    bool
}

// Application represents the application logic interface.
type Application interface {
	Configure(opts app.Options)
	Hover(ctx context.Context, req app.HoverRequest) (app.HoverResponse, error)
	Serve(ctx context.Context, r io.Reader, w io.Writer, opts app.ServeOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "intellitip",
		Short:         "Hover documentation for schema and component references",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVar(&c.root, "root", "", "Workspace root (defaults to the working directory)")
	rootCmd.PersistentFlags().StringVar(&c.settings, "settings", "",
		"Host settings file, relative to the workspace root")
	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "Enable diagnostic logging")
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return c.configure()
	}

	rootCmd.AddCommand(c.newHoverCmd())
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configure() error {
	root := c.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}
	c.app.Configure(app.Options{
		Root:         root,
		SettingsFile: c.settings,
		Debug:        c.debug,
	})
	return nil
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

// SetInput sets the input stream read by the serve command.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
