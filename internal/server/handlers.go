package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sendflowai/sendflow-go/pkg/core"
)

type storeMemoryRequest struct {
	LeadID     string                 `json:"lead_id"`
	OrgID      string                 `json:"org_id,omitempty"`
	MemoryType string                 `json:"memory_type"`
	Content    map[string]interface{} `json:"content"`
	Confidence *float64               `json:"confidence_level,omitempty"`
}

type addKnowledgeRequest struct {
	OrgID       string                 `json:"org_id"`
	Title       string                 `json:"title"`
	Content     string                 `json:"content"`
	ContentType string                 `json:"content_type"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStoreMemory(w http.ResponseWriter, r *http.Request) {
	var req storeMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := []core.StoreOption{}
	if req.OrgID != "" {
		opts = append(opts, core.WithOrgID(req.OrgID))
	}
	if req.Confidence != nil {
		opts = append(opts, core.WithConfidence(*req.Confidence))
	}

	rec, err := s.client.StoreMemory(r.Context(), req.LeadID, core.MemoryType(req.MemoryType), req.Content, opts...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleRetrieveMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := []core.RetrieveOption{}
	if v := q.Get("org_id"); v != "" {
		opts = append(opts, core.WithRetrieveOrgID(v))
	}
	if v := q.Get("memory_type"); v != "" {
		opts = append(opts, core.WithMemoryType(core.MemoryType(v)))
	}
	if v := q.Get("query"); v != "" {
		opts = append(opts, core.WithQuery(v))
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts = append(opts, core.WithLimit(limit))
	}

	recs, err := s.client.RetrieveMemories(r.Context(), q.Get("lead_id"), opts...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"memories": recs})
}

func (s *Server) handleSynthesizeContext(w http.ResponseWriter, r *http.Request) {
	leadID := mux.Vars(r)["lead_id"]

	opts := []core.RetrieveOption{}
	if v := r.URL.Query().Get("org_id"); v != "" {
		opts = append(opts, core.WithRetrieveOrgID(v))
	}

	lc, err := s.client.SynthesizeContext(r.Context(), leadID, opts...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lc)
}

func (s *Server) handleAddKnowledge(w http.ResponseWriter, r *http.Request) {
	var req addKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := []core.KnowledgeOption{}
	if req.Metadata != nil {
		opts = append(opts, core.WithMetadata(req.Metadata))
	}

	item, err := s.client.AddKnowledge(r.Context(), req.OrgID, req.Title, req.Content, core.ContentType(req.ContentType), opts...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleSearchKnowledge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := []core.SearchOption{}
	if v := q.Get("content_type"); v != "" {
		opts = append(opts, core.WithContentType(core.ContentType(v)))
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts = append(opts, core.WithSearchLimit(limit))
	}

	items, err := s.client.SearchKnowledge(r.Context(), q.Get("org_id"), q.Get("query"), opts...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleCadence(w http.ResponseWriter, r *http.Request) {
	leadID := mux.Vars(r)["lead_id"]

	opts := []core.RetrieveOption{}
	if v := r.URL.Query().Get("org_id"); v != "" {
		opts = append(opts, core.WithRetrieveOrgID(v))
	}

	rec, err := s.client.RecommendCadence(r.Context(), leadID, opts...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
