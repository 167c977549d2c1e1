package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/repository"
)

type DraftHandler struct {
	drafts *repository.DraftRepository
}

func NewDraftHandler(drafts *repository.DraftRepository) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

type UpsertDraftRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpsertRichDraftRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ContentHTML string `json:"content_html"`
}

func (h *DraftHandler) List(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.drafts.List(r.Context())
	if err != nil {
		logger.Errorf("list drafts: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list drafts")
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (h *DraftHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	draft, err := h.drafts.Upsert(r.Context(), req.ID, req.Title, req.Content)
	if err != nil {
		logger.Errorf("upsert draft: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *DraftHandler) UpsertRich(w http.ResponseWriter, r *http.Request) {
	var req UpsertRichDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	draft, err := h.drafts.UpsertRich(r.Context(), req.ID, req.Title, req.ContentHTML)
	if err != nil {
		logger.Errorf("upsert rich draft: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		logger.Errorf("delete draft: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete draft")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
