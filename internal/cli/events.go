package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/events"
)

// eventsCommand prints diagram events published by other treewalk processes.
func (c *CLI) eventsCommand() *cobra.Command {
	var natsURL string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print diagram events published to NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := c.cfg.Events.NATSURL
			if natsURL != "" {
				url = natsURL
			}
			if url == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no NATS URL: set events.nats_url or --nats")
			}

			sub, err := events.NewNATSSubscriber(url)
			if err != nil {
				return err
			}
			defer sub.Close()

			ch, cancel, err := sub.Subscribe(events.TopicAll)
			if err != nil {
				return err
			}
			defer cancel()

			printInfo("Listening on %s", StyleHighlight.Render(events.TopicAll))
			ctx := cmd.Context()
			loggerFromContext(ctx).Debug("subscribed", "nats", url, "subject", events.TopicAll)
			for {
				select {
				case <-ctx.Done():
					return nil
				case data, ok := <-ch:
					if !ok {
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), formatEvent(data))
				}
			}
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL (default from config)")
	return cmd
}

// formatEvent renders one published event as a single line.
func formatEvent(data []byte) string {
	var ev diagram.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return StyleWarning.Render("malformed event: " + string(data))
	}
	switch ev.Type {
	case diagram.EventReplace:
		return fmt.Sprintf("#%d replace  %d nodes", ev.Version, ev.Nodes)
	case diagram.EventPaint:
		return fmt.Sprintf("#%d paint    %s %s %s", ev.Version, ev.Node, ev.State, ev.Fill)
	}
	return fmt.Sprintf("#%d %s", ev.Version, ev.Type)
}
