package diagram

import (
	"sync"
	"testing"

	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/tree"
)

func sampleScene() *Scene {
	return &Scene{
		Width:  600,
		Height: 500,
		Edges: []Edge{
			{ID: LinkElementID("30"), From: "50", To: "30"},
			{ID: LinkElementID("70"), From: "50", To: "70"},
		},
		Circles: []Circle{
			{ID: NodeElementID("50"), Node: "50", BaseFill: "black", Fill: "black", State: StateDefault},
			{ID: NodeElementID("30"), Node: "30", BaseFill: "red", Fill: "red", State: StateDefault},
			{ID: NodeElementID("70"), Node: "70", BaseFill: "red", Fill: "red", State: StateDefault},
		},
		Labels: []Label{
			{ID: LabelElementID("50"), Node: "50", Text: "50"},
			{ID: LabelElementID("30"), Node: "30", Text: "30"},
			{ID: LabelElementID("70"), Node: "70", Text: "70"},
		},
	}
}

func TestElementIDs(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{NodeElementID("50"), "node-50"},
		{LabelElementID("50"), "label-50"},
		{LinkElementID("30"), "link-30"},
		{NodeElementID("N30L"), "node-N30L"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestSurfaceReplaceAndSnapshot(t *testing.T) {
	s := NewSurface()
	if s.Snapshot() != nil {
		t.Fatal("new surface should be empty")
	}

	sc := sampleScene()
	s.Replace(sc)

	// Mutating the caller's scene must not leak into the surface.
	sc.Circles[0].Fill = "purple"

	snap := s.Snapshot()
	if len(snap.Circles) != 3 {
		t.Fatalf("circles = %d, want 3", len(snap.Circles))
	}
	if snap.Circles[0].Fill != "black" {
		t.Errorf("fill = %q, want black", snap.Circles[0].Fill)
	}

	// Nor may mutating a snapshot.
	snap.Circles[1].Fill = "purple"
	if c, _ := s.Snapshot().Circle("30"); c.Fill != "red" {
		t.Errorf("snapshot aliasing: fill = %q", c.Fill)
	}
}

func TestSurfaceReplaceDiscardsPriorState(t *testing.T) {
	s := NewSurface()
	s.Replace(sampleScene())
	if err := s.Paint("30", StateActive, "red"); err != nil {
		t.Fatal(err)
	}

	next := &Scene{Circles: []Circle{{ID: NodeElementID("1"), Node: "1", BaseFill: "black", Fill: "black"}}}
	s.Replace(next)

	if s.Has("30") {
		t.Error("node from previous scene still present")
	}
	if !s.Has("1") {
		t.Error("node from new scene missing")
	}
	if err := s.Paint("30", StateVisited, "black"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Paint(stale) err = %v, want NODE_NOT_FOUND", err)
	}
}

func TestSurfacePaint(t *testing.T) {
	s := NewSurface()
	s.Replace(sampleScene())

	if err := s.Paint("30", StateActive, "red"); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	c, ok := s.Snapshot().Circle("30")
	if !ok {
		t.Fatal("circle 30 missing")
	}
	if c.State != StateActive || c.Fill != "red" {
		t.Errorf("circle = %+v", c)
	}
	if base, _ := s.BaseFill("30"); base != "red" {
		t.Errorf("BaseFill = %q, want red", base)
	}

	err := s.Paint("99", StateActive, "red")
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Paint(99) err = %v, want NODE_NOT_FOUND", err)
	}
}

func TestSurfacePaintEmpty(t *testing.T) {
	s := NewSurface()
	if err := s.Paint("50", StateActive, "red"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("err = %v, want NODE_NOT_FOUND", err)
	}
}

func TestSurfaceClear(t *testing.T) {
	s := NewSurface()
	s.Replace(sampleScene())
	s.Clear()
	if s.Snapshot() != nil || s.Has("50") {
		t.Error("surface not cleared")
	}
}

func TestSurfaceSubscribe(t *testing.T) {
	s := NewSurface()
	ch, cancel := s.Subscribe(8)
	defer cancel()

	s.Replace(sampleScene())
	if err := s.Paint("50", StateActive, "red"); err != nil {
		t.Fatal(err)
	}

	ev := <-ch
	if ev.Type != EventReplace || ev.Nodes != 3 {
		t.Errorf("first event = %+v", ev)
	}
	ev = <-ch
	if ev.Type != EventPaint || ev.Node != "50" || ev.ElementID != "node-50" || ev.State != StateActive {
		t.Errorf("second event = %+v", ev)
	}
	if ev.Version != s.Version() {
		t.Errorf("version = %d, want %d", ev.Version, s.Version())
	}
}

func TestSurfaceSubscribeDropsWhenFull(t *testing.T) {
	s := NewSurface()
	ch, cancel := s.Subscribe(1)

	s.Replace(sampleScene())
	for i := 0; i < 5; i++ {
		_ = s.Paint("50", StateActive, "red")
	}

	if got := len(ch); got != 1 {
		t.Errorf("buffered = %d, want 1", got)
	}

	cancel()
	cancel()
	// Drain; the channel must be closed.
	for range ch {
	}
}

func TestSurfaceConcurrentPaint(t *testing.T) {
	s := NewSurface()
	s.Replace(sampleScene())

	ids := []tree.NodeID{"50", "30", "70"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Paint(ids[i%len(ids)], StateVisited, "black")
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	for id, st := range s.Snapshot().States() {
		if st != StateVisited {
			t.Errorf("node %s state = %s", id, st)
		}
	}
}
