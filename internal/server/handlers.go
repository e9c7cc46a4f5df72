package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pidforge/pkg/buildinfo"
	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/document"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/render"
	"github.com/matzehuels/pidforge/pkg/render/topology"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Get().Version,
	})
}

func (s *Server) listComponents(w http.ResponseWriter, r *http.Request) {
	defs, err := s.catalog.ListDefinitions(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, defs)
}

func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	defs, err := s.catalog.ListDefinitions(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	def, ok := defs.Get(chi.URLParam(r, "id"))
	if !ok {
		s.respondJSON(w, http.StatusNotFound, map[string]string{"error": "Component not found"})
		return
	}
	s.respondJSON(w, http.StatusOK, def)
}

func (s *Server) listSchematics(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) saveSchematic(w http.ResponseWriter, r *http.Request) {
	doc, err := document.Read(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		s.respondError(w, err)
		return
	}
	defs, err := s.catalog.ListDefinitions(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := doc.Validate(defs); err != nil {
		s.respondError(w, err)
		return
	}
	if n := doc.PruneEmptyGroups(); n > 0 {
		s.logger.Debug("dropped empty groups", "count", n)
	}
	if err := s.store.Save(r.Context(), &doc); err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info("saved schematic", "id", doc.ID, "components", len(doc.Components))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Schematic saved successfully",
		"id":      doc.ID,
	})
}

func (s *Server) getSchematic(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := document.Write(doc, &buf); err != nil {
		s.respondError(w, pferrors.Wrap(pferrors.ErrCodeInternal, err, "encode schematic"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) deleteSchematic(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportPNG(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDiagram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	data, err := render.ExportDiagram(d)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+render.ExportFilename(s.now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) exportSVG(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDiagram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondSVG(w, render.RenderSVG(d, render.Committed{}))
}

func (s *Server) topologySVG(w http.ResponseWriter, r *http.Request) {
	d, err := s.loadDiagram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	detailed := r.URL.Query().Get("detailed") == "true"
	svg, err := topology.RenderSVG(topology.ToDOT(d, topology.Options{Detailed: detailed}))
	if err != nil {
		s.respondError(w, pferrors.Wrap(pferrors.ErrCodeInternal, err, "render topology"))
		return
	}
	s.respondSVG(w, svg)
}

// loadDiagram rebuilds a stored schematic against the current catalog.
func (s *Server) loadDiagram(ctx context.Context, id string) (*diagram.Diagram, error) {
	doc, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	defs, err := s.catalog.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	return doc.ToDiagram(defs)
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) respondSVG(w http.ResponseWriter, svg []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

// respondError writes err as {"error": message, "code": code}.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, map[string]string{
		"error": pferrors.UserMessage(err),
		"code":  string(codeOf(err)),
	})
}

func codeOf(err error) pferrors.Code {
	if code := pferrors.GetCode(err); code != "" {
		return code
	}
	return pferrors.ErrCodeInternal
}

func statusFor(err error) int {
	switch codeOf(err) {
	case pferrors.ErrCodeNotFound:
		return http.StatusNotFound
	case pferrors.ErrCodeInvalidInput, pferrors.ErrCodeInvalidName, pferrors.ErrCodeInvalidParameter,
		pferrors.ErrCodeInvalidDocument, pferrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case pferrors.ErrCodePrecondition:
		return http.StatusUnprocessableEntity
	case pferrors.ErrCodeNetwork, pferrors.ErrCodeInvalidCatalog:
		return http.StatusBadGateway
	case pferrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case pferrors.ErrCodeNotReady, pferrors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case pferrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
