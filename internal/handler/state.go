package handler

import (
	"encoding/json"
	"net/http"

	"github.com/workdesk/internal/appstate"
	"github.com/workdesk/internal/ws"
)

// StateHandler отдаёт и мутирует состояние сессии через типизированные
// действия. Каждый ответ — новый снапшот состояния.
type StateHandler struct {
	app *appstate.Store
	hub *ws.Hub
}

func NewStateHandler(app *appstate.Store, hub *ws.Hub) *StateHandler {
	return &StateHandler{app: app, hub: hub}
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type SetProRequest struct {
	IsPro bool `json:"is_pro"`
}

type SetEmailRequest struct {
	Email string `json:"email"`
}

type SetLanguageRequest struct {
	Language string `json:"language"`
}

type ToastRequest struct {
	Message string `json:"message"`
}

func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.State())
}

func (h *StateHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Role == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}
	writeJSON(w, http.StatusOK, h.app.SetRole(r.Context(), appstate.Role(req.Role)))
}

func (h *StateHandler) SetPro(w http.ResponseWriter, r *http.Request) {
	var req SetProRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, h.app.SetPro(r.Context(), req.IsPro))
}

func (h *StateHandler) SetProfile(w http.ResponseWriter, r *http.Request) {
	var req appstate.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, h.app.SetProfile(r.Context(), req))
}

func (h *StateHandler) SetEmail(w http.ResponseWriter, r *http.Request) {
	var req SetEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, h.app.SetEmail(r.Context(), req.Email))
}

func (h *StateHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req SetLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, h.app.SetLanguage(r.Context(), req.Language))
}

func (h *StateHandler) Toast(w http.ResponseWriter, r *http.Request) {
	var req ToastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	state := h.app.Toast(r.Context(), req.Message)
	if h.hub != nil && state.UI.LastToast != nil {
		h.hub.ToastShown(state.UI.LastToast.Message, state.UI.LastToast.At)
	}
	writeJSON(w, http.StatusOK, state)
}
