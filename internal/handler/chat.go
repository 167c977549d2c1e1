package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/model"
	"github.com/workdesk/internal/repository"
)

type ChatHandler struct {
	chats *repository.ChatRepository
}

func NewChatHandler(chats *repository.ChatRepository) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type CreateDMChatRequest struct {
	MemberA string `json:"member_a"`
	MemberB string `json:"member_b"`
	Title   string `json:"title"`
}

type CreateGroupChatRequest struct {
	Title   string   `json:"title"`
	Members []string `json:"members"`
}

type SendMessageRequest struct {
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
	FromName string `json:"from_name"`
}

type SendMessageResponse struct {
	Message *model.Message `json:"message"`
	// FanoutErrors — получатели, для которых не удалось создать уведомление.
	// Само сообщение при этом уже записано.
	FanoutErrors []string `json:"fanout_errors,omitempty"`
}

type MarkChatReadRequest struct {
	UserID string `json:"user_id"`
}

type SetChatMembersRequest struct {
	Members []string `json:"members"`
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.ListChats(r.Context())
	if err != nil {
		logger.Errorf("list chats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chats.GetChat(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		logger.Errorf("get chat: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get chat")
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatHandler) CreateDMChat(w http.ResponseWriter, r *http.Request) {
	var req CreateDMChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.MemberA == "" || req.MemberB == "" {
		writeError(w, http.StatusBadRequest, "member_a and member_b are required")
		return
	}
	if req.MemberA == req.MemberB {
		writeError(w, http.StatusBadRequest, "cannot create chat with yourself")
		return
	}
	chat, err := h.chats.CreateDMChat(r.Context(), req.MemberA, req.MemberB, req.Title)
	if err != nil {
		logger.Errorf("create dm chat: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatHandler) CreateGroupChat(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	chat, err := h.chats.CreateGroupChat(r.Context(), req.Title, req.Members)
	if err != nil {
		logger.Errorf("create group chat: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.SenderID == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "sender_id and text are required")
		return
	}
	chatID := chi.URLParam(r, "id")
	msg, fanout, err := h.chats.SendMessage(r.Context(), chatID, req.SenderID, req.Text, req.FromName)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		logger.Errorf("send message: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	resp := SendMessageResponse{Message: msg}
	for _, f := range fanout {
		if f.Err != nil {
			logger.Errorf("send message %s: fan-out для %s: %v", chatID, f.UserID, f.Err)
			resp.FanoutErrors = append(resp.FanoutErrors, f.UserID)
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ChatHandler) MarkChatRead(w http.ResponseWriter, r *http.Request) {
	var req MarkChatReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := h.chats.MarkChatRead(r.Context(), chi.URLParam(r, "id"), req.UserID); err != nil {
		logger.Errorf("mark chat read: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to mark chat read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *ChatHandler) SetChatMembers(w http.ResponseWriter, r *http.Request) {
	var req SetChatMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.chats.SetChatMembers(r.Context(), chi.URLParam(r, "id"), req.Members); err != nil {
		logger.Errorf("set chat members: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to set members")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
