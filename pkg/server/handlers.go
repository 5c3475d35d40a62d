package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/datamapper/pkg/editor"
	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/graph"
	"github.com/matzehuels/datamapper/pkg/pipeline"
	"github.com/matzehuels/datamapper/pkg/schema"
)

type createMappingRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type expressionRequest struct {
	Output     string `json:"output"`
	Expression string `json:"expression"`
}

type elementRequest struct {
	Path string `json:"path"`
}

type toggleRequest struct {
	Path      string `json:"path"`
	Direction string `json:"direction"`
}

type toggleResponse struct {
	Collapsed bool        `json:"collapsed"`
	Graph     graph.Graph `json:"graph"`
}

type searchRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func (s *Server) handleListRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if roots == nil {
		roots = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"roots": roots})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeGraph(w, ed)
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Execute(r.Context(), pipeline.Input{
		Root:     ed.Root(),
		Revision: ed.Snapshot().Revision,
		ViewKey:  ed.Visibility().Key(),
		Graph:    ed.Graph(),
		// The graph may lag the snapshot while a mutation is in flight.
		Volatile: ed.Busy(),
	}, pipeline.Options{Format: pipeline.FormatSVG, Detailed: s.detailed})
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := schema.WriteSnapshot(ed.Snapshot(), &buf); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := schema.ReadSnapshot(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ed, err := s.editorForImport(r.Context(), chi.URLParam(r, "root"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := ed.Import(r.Context(), snap); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeGraph(w, ed)
}

func (s *Server) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	var req createMappingRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.validPaths(w, req.Source, req.Target) {
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.CreateMapping(r.Context(), req.Source, req.Target)
	})
}

func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.validPaths(w, path) {
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.DeleteMapping(r.Context(), path)
	})
}

func (s *Server) handleUpdateExpression(w http.ResponseWriter, r *http.Request) {
	var req expressionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.validPaths(w, req.Output) {
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.UpdateExpression(r.Context(), req.Output, req.Expression)
	})
}

func (s *Server) handleAddElement(w http.ResponseWriter, r *http.Request) {
	var req elementRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.validPaths(w, req.Path) {
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.AddArrayElement(r.Context(), req.Path)
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.Reset(r.Context())
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.validPaths(w, req.Path) {
		return
	}
	dir := schema.Direction(strings.ToUpper(req.Direction))
	if dir != schema.In && dir != schema.Out {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "direction must be IN or OUT, got %q", req.Direction))
		return
	}
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	collapsed, err := ed.Toggle(r.Context(), req.Path, dir)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{
		Collapsed: collapsed,
		Graph:     graph.FromDiagram(ed.Graph(), ed.Snapshot().Revision),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ed.Search(r.Context(), req.Input, req.Output)
	s.writeGraph(w, ed)
}

// lookup resolves the {root} URL parameter to an editor, writing the error response on failure.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*editor.Editor, bool) {
	root := chi.URLParam(r, "root")
	ed, err := s.editor(r.Context(), root)
	if err == nil && ed.Snapshot() == nil {
		err = errors.New(errors.ErrCodeRootNotFound, "root %q has no snapshot", root)
	}
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return ed, true
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(ed *editor.Editor) error) {
	ed, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := fn(ed); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeGraph(w, ed)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func (s *Server) writeGraph(w http.ResponseWriter, ed *editor.Editor) {
	writeJSON(w, http.StatusOK, graph.FromDiagram(ed.Graph(), ed.Snapshot().Revision))
}

// validPaths rejects empty or malformed field paths before any lookup.
func (s *Server) validPaths(w http.ResponseWriter, paths ...string) bool {
	for _, p := range paths {
		if err := errors.ValidateFieldPath(p); err != nil {
			s.writeError(w, err)
			return false
		}
	}
	return true
}
