package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/treewalk/pkg/animate"
	"github.com/matzehuels/treewalk/pkg/client"
	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/render"
	"github.com/matzehuels/treewalk/pkg/tree"
)

type fakeSource struct {
	mu    sync.Mutex
	nodes tree.NodeList
	err   error
}

func (f *fakeSource) FetchTree(ctx context.Context) (tree.NodeList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.nodes, nil
}

func (f *fakeSource) SearchPath(ctx context.Context, value float64) ([]tree.NodeID, error) {
	nodes, err := f.FetchTree(ctx)
	if err != nil {
		return nil, err
	}
	return client.DescendPath(nodes, value)
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func sampleTree() tree.NodeList {
	return tree.NodeList{
		tree.Root("50", "black"),
		tree.Child("30", "red", "50"),
		tree.Child("70", "red", "50"),
	}
}

// cachingSource answers from a fixed snapshot while the live source fails,
// the way client.Client does with a cache attached.
type cachingSource struct {
	*fakeSource
	cached tree.NodeList
}

func (c *cachingSource) FetchTreeOrCached(ctx context.Context) (tree.NodeList, error) {
	nodes, err := c.FetchTree(ctx)
	if err != nil {
		return c.cached, err
	}
	return nodes, nil
}

func newTestServer(t *testing.T) (*Server, *fakeSource, *httptest.Server) {
	t.Helper()
	src := &fakeSource{nodes: sampleTree()}
	s, ts := newServerWithSource(t, src, time.Millisecond)
	return s, src, ts
}

func newServerWithSource(t *testing.T, src client.Source, interval time.Duration) (*Server, *httptest.Server) {
	t.Helper()
	surface := diagram.NewSurface()
	anim := animate.New(surface, animate.WithInterval(interval))
	t.Cleanup(anim.Cancel)

	s := New(Options{
		Engine:    render.New(surface),
		Animator:  anim,
		Source:    src,
		Keepalive: 50 * time.Millisecond,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestIndexAndHealth(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("GET / = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("healthz = %v", body)
	}
}

func TestRefreshAndDiagram(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/refresh", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body["nodes"] != float64(3) {
		t.Fatalf("refresh = %d %v", resp.StatusCode, body)
	}

	resp, err = http.Get(ts.URL + "/api/diagram.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	sc := bufio.NewScanner(resp.Body)
	var svg strings.Builder
	for sc.Scan() {
		svg.WriteString(sc.Text())
	}
	for _, id := range []string{`id="node-50"`, `id="node-30"`, `id="node-70"`, `id="link-30"`} {
		if !strings.Contains(svg.String(), id) {
			t.Errorf("svg missing %s", id)
		}
	}

	resp, err = http.Get(ts.URL + "/api/diagram.json")
	if err != nil {
		t.Fatal(err)
	}
	var scene struct {
		Circles []diagram.Circle         `json:"circles"`
		States  map[string]diagram.State `json:"states"`
	}
	decode(t, resp, &scene)
	if len(scene.Circles) != 3 || scene.States["50"] != diagram.StateDefault {
		t.Errorf("json scene = %+v", scene)
	}
}

func TestRefreshFailureKeepsDiagram(t *testing.T) {
	s, src, ts := newTestServer(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := s.Surface().Version()

	src.fail(errors.New(errors.ErrCodeTransport, "connection refused"))
	resp, err := http.Post(ts.URL+"/api/refresh", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	if s.Surface().Version() != before {
		t.Error("failed refresh touched the surface")
	}
}

func TestRefreshFailureIgnoresCacheOverLiveDiagram(t *testing.T) {
	src := &cachingSource{
		fakeSource: &fakeSource{nodes: sampleTree()},
		cached:     tree.NodeList{tree.Root("1", "black")},
	}
	s, ts := newServerWithSource(t, src, time.Millisecond)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Surface().Paint("50", diagram.StateActive, "red"); err != nil {
		t.Fatal(err)
	}
	before := s.Surface().Version()

	src.fail(errors.New(errors.ErrCodeTransport, "connection refused"))
	resp, err := http.Post(ts.URL+"/api/refresh", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}

	if s.Surface().Version() != before {
		t.Error("failed refresh touched the surface")
	}
	sc := s.Surface().Snapshot()
	if len(sc.Circles) != 3 {
		t.Fatalf("circles = %d, want 3", len(sc.Circles))
	}
	if c, _ := sc.Circle("50"); c.State != diagram.StateActive {
		t.Errorf("50 state = %s, want active", c.State)
	}
}

func TestRefreshUsesCacheWhenEmpty(t *testing.T) {
	src := &cachingSource{
		fakeSource: &fakeSource{err: errors.New(errors.ErrCodeTransport, "connection refused")},
		cached:     sampleTree(),
	}
	s, ts := newServerWithSource(t, src, time.Millisecond)

	resp, err := http.Post(ts.URL+"/api/refresh", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Nodes int  `json:"nodes"`
		Stale bool `json:"stale"`
	}
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body.Nodes != 3 || !body.Stale {
		t.Errorf("refresh = %d %+v, want 200 with 3 stale nodes", resp.StatusCode, body)
	}
	if sc := s.Surface().Snapshot(); sc == nil || len(sc.Circles) != 3 {
		t.Error("cached tree not drawn on an empty surface")
	}
}

func TestRefreshMalformedKeepsAnimation(t *testing.T) {
	src := &fakeSource{nodes: sampleTree()}
	s, _ := newServerWithSource(t, src, time.Hour)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	sess := s.animator.Animate([]tree.NodeID{"50", "30"})

	src.mu.Lock()
	src.nodes = tree.NodeList{tree.Root("1", "black"), tree.Root("2", "black")}
	src.mu.Unlock()
	if _, err := s.Refresh(context.Background()); !errors.Is(err, errors.ErrCodeMalformedTree) {
		t.Fatalf("err = %v, want MALFORMED_TREE", err)
	}
	if st := sess.State(); st.Terminal() {
		t.Errorf("session state = %s after rejected refresh, want it still running", st)
	}
	if s.animator.Current() != sess {
		t.Error("rejected refresh replaced the current session")
	}

	src.mu.Lock()
	src.nodes = sampleTree()
	src.mu.Unlock()
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st := sess.State(); st != animate.StateCancelled {
		t.Errorf("session state = %s after accepted refresh, want cancelled", st)
	}
}

func TestRefreshMalformedTree(t *testing.T) {
	s, src, ts := newTestServer(t)
	src.nodes = tree.NodeList{tree.Root("1", "black"), tree.Root("2", "black")}

	resp, err := http.Post(ts.URL+"/api/refresh", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if s.Surface().Snapshot() != nil {
		t.Error("malformed tree was rendered")
	}
}

func TestSearch(t *testing.T) {
	s, _, ts := newTestServer(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader(`{"value": 30}`))
	if err != nil {
		t.Fatal(err)
	}
	var got searchResponse
	decode(t, resp, &got)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(got.Path) != 2 || got.Path[0] != "50" || got.Path[1] != "30" {
		t.Fatalf("path = %v", got.Path)
	}

	sess := s.animator.Current()
	if sess == nil || sess.ID() != got.Session {
		t.Fatalf("current session = %v, want %s", sess, got.Session)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sess.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	states := s.Surface().Snapshot().States()
	if states["50"] != diagram.StateVisited || states["30"] != diagram.StateActive || states["70"] != diagram.StateDefault {
		t.Errorf("states = %v", states)
	}

	resp, err = http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatal(err)
	}
	var status sessionResponse
	decode(t, resp, &status)
	if status.State != string(animate.StateCompleted) || status.Session != got.Session {
		t.Errorf("session = %+v", status)
	}
}

func TestSearchForm(t *testing.T) {
	s, _, ts := newTestServer(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	resp, err := http.PostForm(ts.URL+"/api/search", url.Values{"value": {"70"}})
	if err != nil {
		t.Fatal(err)
	}
	var got searchResponse
	decode(t, resp, &got)
	if resp.StatusCode != http.StatusAccepted || got.Value != 70 {
		t.Errorf("form search = %d %+v", resp.StatusCode, got)
	}
}

func TestSearchInvalidInput(t *testing.T) {
	_, _, ts := newTestServer(t)

	for _, body := range []string{`{"value": ""}`, `{"value": "abc"}`, `{}`} {
		resp, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestSessionBeforeSearch(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestEventStream(t *testing.T) {
	s, _, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	sc := bufio.NewScanner(resp.Body)
	var event string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event:") {
			event = strings.TrimPrefix(line, "event:")
		}
		if strings.HasPrefix(line, "data:") && event == string(diagram.EventReplace) {
			var ev diagram.Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Nodes != 3 {
				t.Errorf("replace event nodes = %d, want 3", ev.Nodes)
			}
			return
		}
	}
	t.Fatalf("stream ended without replace event: %v", sc.Err())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeNodeNotFound, http.StatusNotFound},
		{errors.ErrCodeMalformedTree, http.StatusUnprocessableEntity},
		{errors.ErrCodeTransport, http.StatusBadGateway},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errors.New(tt.code, "x")); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
