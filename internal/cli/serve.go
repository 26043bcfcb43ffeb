package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/treewalk/internal/server"
	"github.com/matzehuels/treewalk/pkg/errors"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram in the browser",
		Long: `Serve starts an HTTP server with a page showing the diagram. Searches
started from the page are animated live through server-sent events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("addr") {
				c.cfg.Serve.Addr = addr
			}

			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(server.Options{
				Engine:   a.engine,
				Animator: a.animator,
				Source:   a.source,
				Logger:   loggerFromContext(ctx),
			})
			if n, err := srv.Refresh(ctx); err != nil && n == 0 {
				c.Logger.Warn("initial tree load failed, serving an empty diagram", "err", errors.UserMessage(err))
			} else {
				c.Logger.Info("tree loaded", "nodes", n)
			}

			printSuccess("Serving on %s", StyleLink.Render(displayURL(c.cfg.Serve.Addr)))
			if a.client != nil {
				printKeyValue("tree", a.client.Server())
			} else {
				printKeyValue("tree", c.file)
			}
			events := "off"
			if c.cfg.Events.NATSURL != "" {
				events = c.cfg.Events.NATSURL
			}
			printKeyValue("events", events)
			return srv.ListenAndServe(ctx, c.cfg.Serve.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// displayURL turns a listen address into a clickable URL.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
