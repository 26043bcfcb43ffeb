// Package events publishes diagram changes to a message bus so that other
// processes can mirror the diagram as it is rendered and animated.
//
// Every [diagram.Event] becomes one JSON message on a subject derived from
// its type:
//
//	treewalk.diagram.replace  a new tree was rendered
//	treewalk.diagram.paint    one node changed visual state
//	treewalk.diagram.clear    the diagram was emptied
//
// [NATSPublisher] sends to NATS; [NoopPublisher] is used when no bus is
// configured.
package events

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treewalk/pkg/diagram"
)

// Subjects.
const (
	TopicPrefix  = "treewalk.diagram."
	TopicReplace = TopicPrefix + string(diagram.EventReplace)
	TopicPaint   = TopicPrefix + string(diagram.EventPaint)
	TopicClear   = TopicPrefix + string(diagram.EventClear)
	TopicAll     = "treewalk.diagram.>"
)

// Publisher sends events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Topic returns the subject for ev.
func Topic(ev diagram.Event) string {
	return TopicPrefix + string(ev.Type)
}

// Forward publishes every change of surface until ctx is done. Publish
// failures are logged and do not stop forwarding.
func Forward(ctx context.Context, surface *diagram.Surface, pub Publisher, logger *log.Logger) {
	ch, cancel := surface.Subscribe(forwardBuffer)
	defer cancel()
	forward(ctx, ch, pub, logger)
}

// Start subscribes to surface before returning and forwards its changes in
// the background. stop unsubscribes, publishes what is still buffered and
// waits for the forwarder to exit.
func Start(surface *diagram.Surface, pub Publisher, logger *log.Logger) (stop func()) {
	ch, cancel := surface.Subscribe(forwardBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		forward(context.Background(), ch, pub, logger)
	}()
	return func() {
		cancel()
		<-done
	}
}

const forwardBuffer = 256

func forward(ctx context.Context, ch <-chan diagram.Event, pub Publisher, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := pub.Publish(ctx, Topic(ev), ev); err != nil && logger != nil {
				logger.Warn("publish failed", "topic", Topic(ev), "err", err)
			}
		}
	}
}
