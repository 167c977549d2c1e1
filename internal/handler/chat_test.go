package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/workdesk/internal/model"
	"github.com/workdesk/internal/repository"
	"github.com/workdesk/internal/storage"
	"github.com/workdesk/internal/storage/memory"
)

func newChatRouter(t *testing.T) http.Handler {
	t.Helper()
	store := storage.NewStore(memory.New())
	metrics := repository.NewMetricsRepository(store)
	notifs := repository.NewNotificationRepository(store, metrics, nil)
	chats := repository.NewChatRepository(store, notifs)
	h := NewChatHandler(chats)

	r := chi.NewRouter()
	r.Get("/api/chats", h.ListChats)
	r.Get("/api/chats/{id}", h.GetChat)
	r.Post("/api/chats/dm", h.CreateDMChat)
	r.Post("/api/chats/group", h.CreateGroupChat)
	r.Post("/api/chats/{id}/messages", h.SendMessage)
	r.Post("/api/chats/{id}/read", h.MarkChatRead)
	r.Put("/api/chats/{id}/members", h.SetChatMembers)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListChatsReturnsSeededChats(t *testing.T) {
	router := newChatRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/chats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var chats []model.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chats) != 2 || chats[0].ID != "chat_demo_1" {
		t.Fatalf("unexpected chats: %+v", chats)
	}
}

func TestGetChatNotFoundReturns404(t *testing.T) {
	router := newChatRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/chats/chat_nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateDMChatValidation(t *testing.T) {
	router := newChatRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/chats/dm", CreateDMChatRequest{MemberA: "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing member_b: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/chats/dm", CreateDMChatRequest{MemberA: "admin", MemberB: "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self chat: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/chats/dm", CreateDMChatRequest{MemberA: "admin", MemberB: "staff"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var chat model.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if chat.Type != model.ChatTypeDM || len(chat.Members) != 2 {
		t.Fatalf("unexpected chat: %+v", chat)
	}
}

func TestSendMessageEndpoint(t *testing.T) {
	router := newChatRouter(t)
	// Сидирование через первый запрос списка.
	doJSON(t, router, http.MethodGet, "/api/chats", nil)

	rec := doJSON(t, router, http.MethodPost, "/api/chats/chat_demo_1/messages",
		SendMessageRequest{SenderID: "admin", Text: "hello", FromName: "Admin"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp SendMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message == nil || resp.Message.Text != "hello" || resp.Message.SenderID != "admin" {
		t.Fatalf("unexpected message: %+v", resp.Message)
	}
	if len(resp.FanoutErrors) != 0 {
		t.Fatalf("expected clean fan-out, got %v", resp.FanoutErrors)
	}
	if !resp.Message.ReadBy["admin"] || resp.Message.ReadBy["customer"] {
		t.Fatalf("unexpected readBy: %v", resp.Message.ReadBy)
	}
}

func TestSendMessageValidationAndUnknownChat(t *testing.T) {
	router := newChatRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/chats/chat_demo_1/messages",
		SendMessageRequest{SenderID: "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty text: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/chats/chat_nope/messages",
		SendMessageRequest{SenderID: "admin", Text: "hi"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chat: status = %d, want 404", rec.Code)
	}
}

func TestMarkChatReadEndpoint(t *testing.T) {
	router := newChatRouter(t)
	doJSON(t, router, http.MethodGet, "/api/chats", nil)

	rec := doJSON(t, router, http.MethodPost, "/api/chats/chat_demo_1/read", MarkChatReadRequest{UserID: "admin"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/chats/chat_demo_1", nil)
	var chat model.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !chat.Messages[0].ReadBy["admin"] {
		t.Fatalf("message must be read by admin: %v", chat.Messages[0].ReadBy)
	}
}

func TestSetChatMembersEndpoint(t *testing.T) {
	router := newChatRouter(t)
	doJSON(t, router, http.MethodGet, "/api/chats", nil)

	rec := doJSON(t, router, http.MethodPut, "/api/chats/chat_demo_2/members",
		SetChatMembersRequest{Members: []string{"admin", "staff", "customer"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/api/chats/chat_demo_2", nil)
	var chat model.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chat.Members) != 3 {
		t.Fatalf("unexpected members: %v", chat.Members)
	}
}
