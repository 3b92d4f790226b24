// Command picogen generates a static site for the web and for Gemini from
// one tree of annotated content files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-picogen/cmd/picogen/internal/bootstrap"
)

var (
	version       = "dev"
	moduleBuilder = bootstrap.BuildModule
)

type globalFlags struct {
	root       string
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "picogen",
		Short: "Static site generator for HTTP and Gemini",
		Long: `picogen turns a content/ tree of annotated markdown, HTML and gemtext
files into a website (target/html) and a Gemini capsule (target/gmi),
with taxonomy indexes, value lists and feeds driven by the site config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&flags.root, "root", "C", ".", "Project directory holding content, templates and static")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Site configuration file (defaults to config.json, config.yaml or config.yml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Structured log format via go-logger (json, console, pretty)")

	cmd.AddCommand(newGenerateCommand(flags))
	cmd.AddCommand(newServeCommand(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "picogen version %s\n", version)
		},
	})
	return cmd
}
