package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/matzehuels/treewalk/pkg/client"
	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/render/sink"
	"github.com/matzehuels/treewalk/pkg/tree"
)

type searchRequest struct {
	Value json.RawMessage `json:"value"`
}

type searchResponse struct {
	Session string        `json:"session"`
	Value   float64       `json:"value"`
	Path    []tree.NodeID `json:"path"`
}

type sessionResponse struct {
	Session string        `json:"session"`
	State   string        `json:"state"`
	Step    int           `json:"step"`
	Path    []tree.NodeID `json:"path"`
	Error   string        `json:"error,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexPage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDiagramSVG(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(sink.RenderSVG(s.Surface().Snapshot(), sink.WithStateClasses()))
}

func (s *Server) handleDiagramJSON(w http.ResponseWriter, _ *http.Request) {
	data, err := sink.RenderJSON(s.Surface().Snapshot())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// handleSearch accepts {"value": 42}, {"value": "42"} or a form field named
// value. The animation outlives the request.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	raw, err := searchValue(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	value, path, err := client.Search(r.Context(), s.source, raw)
	if err != nil {
		s.logger.Warn("search failed", "value", raw, "err", err)
		writeError(w, statusFor(err), errors.UserMessage(err))
		return
	}

	sess := s.animator.Animate(path)
	s.logger.Info("search started", "value", value, "steps", len(path), "session", sess.ID())
	writeJSON(w, http.StatusAccepted, searchResponse{Session: sess.ID(), Value: value, Path: path})
}

func searchValue(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req searchRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode search request")
		}
		var str string
		if err := json.Unmarshal(req.Value, &str); err == nil {
			return str, nil
		}
		return string(req.Value), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form")
	}
	return r.FormValue("value"), nil
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.animator.Current()
	if sess == nil {
		writeError(w, http.StatusNotFound, "no search has run yet")
		return
	}
	resp := sessionResponse{
		Session: sess.ID(),
		State:   string(sess.State()),
		Step:    sess.Step(),
		Path:    sess.Path(),
	}
	if err := sess.Err(); err != nil {
		resp.Error = errors.UserMessage(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	s.animator.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	n, err := s.Refresh(r.Context())
	switch {
	case err != nil && n > 0:
		s.logger.Warn("refresh used cached tree", "err", err)
		writeJSON(w, http.StatusOK, map[string]any{"nodes": n, "stale": true, "error": errors.UserMessage(err)})
	case err != nil:
		s.logger.Warn("refresh failed", "err", err)
		writeError(w, statusFor(err), errors.UserMessage(err))
	default:
		writeJSON(w, http.StatusOK, map[string]any{"nodes": n})
	}
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMalformedTree, errors.ErrCodeInvalidFormat:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTransport:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
