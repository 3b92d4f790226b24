package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-picogen/internal/generator"
	"github.com/goliatone/go-picogen/internal/protocol"
)

// ErrServeUnsupported is returned for formats without a built-in server.
var ErrServeUnsupported = errors.New("picogen serve: only the http target can be served; use a Gemini server for target/gmi")

type serveFlags struct {
	port int
	bind string
}

func newServeCommand(global *globalFlags) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve [protocol]",
		Short: "Serve the generated http site for local preview",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := protocol.HTTP.String()
			if len(args) == 1 {
				name = args[0]
			}
			return runServe(cmd.Context(), cmd.OutOrStdout(), global, flags, name)
		},
	}
	cmd.Flags().IntVarP(&flags.port, "port", "p", 8000, "Port to listen on")
	cmd.Flags().StringVar(&flags.bind, "bind", "", "Address to bind (all interfaces when empty)")
	return cmd
}

func runServe(ctx context.Context, out io.Writer, global *globalFlags, flags *serveFlags, name string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := protocol.Parse(name)
	if err != nil {
		return err
	}
	if target != protocol.HTTP {
		return fmt.Errorf("%w (requested %s)", ErrServeUnsupported, target)
	}

	dir := filepath.Join(global.root, generator.DefaultConfig().TargetDir, target.FileSuffix())
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("picogen serve: %s does not exist, run `picogen generate http` first", dir)
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(flags.bind, strconv.Itoa(flags.port)))
	if err != nil {
		return fmt.Errorf("picogen serve: %w", err)
	}
	server := &http.Server{
		Handler:           newSiteHandler(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	fmt.Fprintf(out, "Serving %s on http://%s\n", dir, listener.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// newSiteHandler serves dir with directory index.html resolution.
func newSiteHandler(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}
