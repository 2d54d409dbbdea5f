package server

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/pipeline"
	"github.com/matzehuels/docsmith/pkg/processor"
	"github.com/matzehuels/docsmith/pkg/processors"
	"github.com/matzehuels/docsmith/pkg/tags"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// decodeQuery fills req from the URL query and validates it.
func decodeQuery(r *http.Request, req any) error {
	if err := schemaDecoder.Decode(req, r.URL.Query()); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid query parameters")
	}
	if err := validate.Struct(req); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid query parameters")
	}
	return nil
}

// DocResponse is the processed doc of one documentable.
type DocResponse struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	File string `json:"file,omitempty"`
	Doc  string `json:"doc"`
}

func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || id == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "missing documentable id"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ix, err := s.index()
	if err != nil {
		writeError(w, err)
		return
	}
	content, err := s.runner.Query(r.Context(), s.store, ix, id, s.opts)
	if err != nil {
		writeError(w, err)
		return
	}
	d, _ := ix.Get(id)
	writeJSON(w, http.StatusOK, DocResponse{ID: id, Path: d.Path, File: d.File, Doc: string(content)})
}

type queryRequest struct {
	Path string `schema:"path" validate:"required"`
	From string `schema:"from"`
}

// QueryResponse is the result of resolving a path query.
type QueryResponse struct {
	Query     string   `json:"query"`
	Found     bool     `json:"found"`
	ID        string   `json:"id,omitempty"`
	Path      string   `json:"path,omitempty"`
	Attempted []string `json:"attempted,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeQuery(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ix, err := s.index()
	if err != nil {
		writeError(w, err)
		return
	}

	resp := QueryResponse{Query: req.Path}
	if req.From == "" {
		if docs := ix.ByPath(req.Path); len(docs) > 0 {
			resp.Found, resp.ID, resp.Path = true, docs[0].ID, docs[0].Path
		} else {
			resp.Attempted = []string{req.Path}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	from, ok := ix.Get(req.From)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no documentable with id %q", req.From))
		return
	}
	if d := ix.Query(from, req.Path, nil); d != nil {
		resp.Found, resp.ID, resp.Path = true, d.ID, d.Path
	} else {
		resp.Attempted = ix.AttemptedPaths(from, req.Path)
	}
	writeJSON(w, http.StatusOK, resp)
}

type highlightsRequest struct {
	ID string `schema:"id" validate:"required"`
}

// HighlightsResponse lists the tag highlights of a documentable's source
// doc.
type HighlightsResponse struct {
	ID         string           `json:"id"`
	Doc        string           `json:"doc"`
	Highlights []tags.Highlight `json:"highlights"`
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	var req highlightsRequest
	if err := decodeQuery(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := processors.Pipeline(s.opts.Processors)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ix, err := s.index()
	if err != nil {
		writeError(w, err)
		return
	}
	d, ok := ix.Get(req.ID)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no documentable with id %q", req.ID))
		return
	}
	hs := p.Highlights(d.SourceDoc)
	if hs == nil {
		hs = []tags.Highlight{}
	}
	writeJSON(w, http.StatusOK, HighlightsResponse{ID: d.ID, Doc: string(d.SourceDoc), Highlights: hs})
}

func (s *Server) handleCompletions(w http.ResponseWriter, _ *http.Request) {
	p, err := processors.Pipeline(s.opts.Processors)
	if err != nil {
		writeError(w, err)
		return
	}
	cs := p.Completions()
	if cs == nil {
		cs = []processor.CompletionInfo{}
	}
	writeJSON(w, http.StatusOK, cs)
}

type graphRequest struct {
	Format string `schema:"format" validate:"omitempty,oneof=dot svg png pdf json"`
	Static bool   `schema:"static"`
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// handleGraph renders the reference graph. The default is the resolved
// graph of the snapshot; static=true renders the include graph of the
// source docs, cycles included.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := decodeQuery(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatJSON
	}

	s.mu.Lock()
	ix, err := s.index()
	if err != nil {
		s.mu.Unlock()
		writeError(w, err)
		return
	}
	g := s.store.Graph(ix)
	if req.Static {
		g = processors.IncludeGraph(ix)
	}
	s.mu.Unlock()

	opts := s.opts
	opts.Formats = []string{req.Format}
	out, _, err := s.runner.RenderGraph(r.Context(), g, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out[req.Format])
}

// ReloadResponse summarizes a reload.
type ReloadResponse struct {
	Documentables int      `json:"documentables"`
	Processed     int      `json:"processed"`
	Failed        int      `json:"failed"`
	Fresh         bool     `json:"fresh"`
	Errors        []string `json:"errors,omitempty"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, err := s.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := ReloadResponse{
		Documentables: res.Stats.Documentables,
		Processed:     res.Stats.Processed,
		Failed:        res.Stats.Failed,
		Fresh:         res.CacheInfo.Fresh,
	}
	for id, e := range res.Errors {
		resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s", id, strings.TrimSpace(errors.UserMessage(e))))
	}
	slices.Sort(resp.Errors)
	writeJSON(w, http.StatusOK, resp)
}
