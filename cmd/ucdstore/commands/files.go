package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

const shutdownTimeout = 5 * time.Second

func (c *CLI) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <version> <path>",
		Short: "Print a file of a tracked version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.GetFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <version>",
		Short: "List the files of a tracked version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, _ := cmd.Flags().GetBool("tree")
			if tree {
				nodes, err := c.app.FileTree(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.renderer(cmd).Tree(nodes)
			}
			files, err := c.app.ListFiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.renderer(cmd).Files(files)
		},
	}
	cmd.Flags().Bool("tree", false, "Show the remote file tree")
	return cmd
}

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store files over HTTP below /raw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			h, err := c.app.Handler()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), addr, h, func(l net.Addr) {
				cmd.Printf("serving store on http://%s/raw\n", l)
			})
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	return cmd
}

// serve runs h on addr until ctx is cancelled.
func serve(ctx context.Context, addr string, h http.Handler, ready func(net.Addr)) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", addr)
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return zerr.Wrap(err, "failed to shut down server")
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
