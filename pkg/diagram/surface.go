package diagram

import (
	"sync"

	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// EventType names a kind of surface mutation.
type EventType string

// Event types.
const (
	EventReplace EventType = "replace"
	EventPaint   EventType = "paint"
	EventClear   EventType = "clear"
)

// Event describes one mutation of a [Surface].
type Event struct {
	Type      EventType   `json:"type"`
	Version   uint64      `json:"version"`
	Node      tree.NodeID `json:"node,omitempty"`
	ElementID string      `json:"elementId,omitempty"`
	State     State       `json:"state,omitempty"`
	Fill      string      `json:"fill,omitempty"`
	Nodes     int         `json:"nodes,omitempty"`
}

// Surface is the shared, mutable diagram. It is safe for concurrent use.
type Surface struct {
	mu      sync.RWMutex
	scene   *Scene
	index   map[tree.NodeID]int
	version uint64

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{subs: make(map[int]chan Event)}
}

// Replace discards the current scene and installs sc. The surface keeps its
// own copy; sc may be reused by the caller.
func (s *Surface) Replace(sc *Scene) {
	next := sc.Clone()
	index := make(map[tree.NodeID]int, len(next.Circles))
	for i, c := range next.Circles {
		index[c.Node] = i
	}

	s.mu.Lock()
	s.scene = next
	s.index = index
	s.version++
	ev := Event{Type: EventReplace, Version: s.version, Nodes: len(next.Circles)}
	s.mu.Unlock()

	s.publish(ev)
}

// Clear removes the current scene.
func (s *Surface) Clear() {
	s.mu.Lock()
	s.scene = nil
	s.index = nil
	s.version++
	ev := Event{Type: EventClear, Version: s.version}
	s.mu.Unlock()

	s.publish(ev)
}

// Paint sets the visual state and fill of the circle drawn for id. It fails
// with NODE_NOT_FOUND when the current scene has no such node.
func (s *Surface) Paint(id tree.NodeID, st State, fill string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeNodeNotFound, "node %q is not in the diagram", id)
	}
	c := &s.scene.Circles[i]
	c.State = st
	c.Fill = fill
	s.version++
	ev := Event{
		Type:      EventPaint,
		Version:   s.version,
		Node:      id,
		ElementID: c.ID,
		State:     st,
		Fill:      fill,
	}
	s.mu.Unlock()

	s.publish(ev)
	return nil
}

// Has reports whether the current scene draws a node for id.
func (s *Surface) Has(id tree.NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// BaseFill returns the node's own color in the current scene.
func (s *Surface) BaseFill(id tree.NodeID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return "", false
	}
	return s.scene.Circles[i].BaseFill, true
}

// Empty reports whether nothing has been drawn yet.
func (s *Surface) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene == nil
}

// Snapshot returns a copy of the current scene, or nil when empty.
func (s *Surface) Snapshot() *Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.Clone()
}

// Version returns a counter bumped by every mutation.
func (s *Surface) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers for mutation events. The returned cancel function
// unregisters and closes the channel; it is safe to call more than once.
func (s *Surface) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, max(buffer, 1))

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Surface) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Drop rather than block the writer.
		}
	}
}
