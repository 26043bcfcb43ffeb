package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = &NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicPaint, diagram.Event{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNATSPublisher_ImplementsPublisher(t *testing.T) {
	var _ Publisher = (*NATSPublisher)(nil)
}

func TestTopic(t *testing.T) {
	tests := []struct {
		ev   diagram.EventType
		want string
	}{
		{diagram.EventReplace, TopicReplace},
		{diagram.EventPaint, "treewalk.diagram.paint"},
		{diagram.EventClear, TopicClear},
	}
	for _, tt := range tests {
		if got := Topic(diagram.Event{Type: tt.ev}); got != tt.want {
			t.Errorf("Topic(%s) = %s, want %s", tt.ev, got, tt.want)
		}
	}
}

func receive(t *testing.T, ch <-chan []byte) diagram.Event {
	t.Helper()
	select {
	case data := <-ch:
		var ev diagram.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return diagram.Event{}
}

func TestForwardPublishesSurfaceChanges(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	surface := diagram.NewSurface()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Forward(ctx, surface, pub, nil)
		close(done)
	}()
	defer func() {
		stop()
		<-done
	}()

	// Forward subscribes asynchronously; replace until an event comes through.
	deadline := time.Now().Add(2 * time.Second)
	for forwarded := false; !forwarded; {
		surface.Replace(&diagram.Scene{Circles: []diagram.Circle{{ID: "node-50", Node: "50", Fill: "black"}}})
		_ = pub.Flush()
		select {
		case data := <-ch:
			var ev diagram.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Type != diagram.EventReplace || ev.Nodes != 1 {
				t.Fatalf("first event = %+v", ev)
			}
			forwarded = true
		case <-time.After(20 * time.Millisecond):
			if time.Now().After(deadline) {
				t.Fatal("no replace event forwarded")
			}
		}
	}

	if err := surface.Paint(tree.NodeID("50"), diagram.StateActive, "red"); err != nil {
		t.Fatal(err)
	}
	_ = pub.Flush()

	// Earlier replace attempts may still be in flight.
	for {
		ev := receive(t, ch)
		if ev.Type == diagram.EventReplace {
			continue
		}
		if ev.Type != diagram.EventPaint || ev.Node != "50" || ev.State != diagram.StateActive || ev.Fill != "red" {
			t.Errorf("paint event = %+v", ev)
		}
		break
	}
}

func TestNATSSubscriberCancel(t *testing.T) {
	url := startTestNATS(t)
	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel not closed after cancel")
	}
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	if _, err := NewNATSPublisher("nats://127.0.0.1:1"); err == nil {
		t.Error("expected connection error")
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	r.mu.Lock()
	r.topics = append(r.topics, topic)
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestStartDrainsOnStop(t *testing.T) {
	surface := diagram.NewSurface()
	rec := &recordingPublisher{}
	stop := Start(surface, rec, nil)

	surface.Replace(&diagram.Scene{Circles: []diagram.Circle{{ID: "node-1", Node: "1"}}})
	if err := surface.Paint("1", diagram.StateActive, "red"); err != nil {
		t.Fatal(err)
	}
	surface.Clear()
	stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{TopicReplace, TopicPaint, TopicClear}
	if len(rec.topics) != len(want) {
		t.Fatalf("topics = %v, want %v", rec.topics, want)
	}
	for i := range want {
		if rec.topics[i] != want[i] {
			t.Errorf("topics[%d] = %s, want %s", i, rec.topics[i], want[i])
		}
	}
}
