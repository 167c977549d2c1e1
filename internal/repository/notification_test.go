package repository

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/workdesk/internal/model"
	"github.com/workdesk/internal/storage"
	"github.com/workdesk/internal/storage/memory"
)

func newNotificationRepo(t *testing.T) *NotificationRepository {
	t.Helper()
	store := storage.NewStore(memory.New())
	metrics := NewMetricsRepository(store)
	metrics.now = func() time.Time { return testNow }
	r := NewNotificationRepository(store, metrics, nil)
	r.now = func() time.Time { return testNow }
	return r
}

func TestAddMessageNotificationPrependsNewestFirst(t *testing.T) {
	r := newNotificationRepo(t)
	ctx := context.Background()

	first, err := r.AddMessageNotification(ctx, model.NotificationInput{
		ToUserID: "customer", FromUserID: "admin", FromName: "Admin",
		ChatID: "chat_demo_1", MessageID: "msg_1", PreviewText: "first",
	})
	if err != nil {
		t.Fatalf("AddMessageNotification: %v", err)
	}
	second, err := r.AddMessageNotification(ctx, model.NotificationInput{
		ToUserID: "customer", FromUserID: "admin", FromName: "Admin",
		ChatID: "chat_demo_1", MessageID: "msg_2", PreviewText: "second",
	})
	if err != nil {
		t.Fatalf("AddMessageNotification: %v", err)
	}

	feed, err := r.List(ctx, "customer")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(feed))
	}
	if feed[0].ID != second.ID || feed[1].ID != first.ID {
		t.Fatalf("feed must be newest first: %v", []string{feed[0].ID, feed[1].ID})
	}
	if feed[0].Read {
		t.Fatalf("new notification must start unread")
	}
	if feed[0].Type != model.NotificationTypeMessage {
		t.Fatalf("unexpected type %q", feed[0].Type)
	}
}

func TestListEmptyFeed(t *testing.T) {
	r := newNotificationRepo(t)
	feed, err := r.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if feed == nil || len(feed) != 0 {
		t.Fatalf("empty feed must be an empty slice, got %#v", feed)
	}
}

func TestMarkReadFlipsOnlyMatchingID(t *testing.T) {
	r := newNotificationRepo(t)
	ctx := context.Background()

	a, _ := r.AddMessageNotification(ctx, model.NotificationInput{ToUserID: "staff", FromUserID: "admin", PreviewText: "a"})
	b, _ := r.AddMessageNotification(ctx, model.NotificationInput{ToUserID: "staff", FromUserID: "admin", PreviewText: "b"})

	if err := r.MarkRead(ctx, "staff", a.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	feed, _ := r.List(ctx, "staff")
	for _, n := range feed {
		switch n.ID {
		case a.ID:
			if !n.Read {
				t.Fatalf("notification %s must be read", a.ID)
			}
		case b.ID:
			if n.Read {
				t.Fatalf("notification %s must stay unread", b.ID)
			}
		}
	}
}

func TestMarkReadIsIdempotentAndMissingIDIsNoop(t *testing.T) {
	r := newNotificationRepo(t)
	ctx := context.Background()

	n, _ := r.AddMessageNotification(ctx, model.NotificationInput{ToUserID: "staff", FromUserID: "admin", PreviewText: "x"})
	if err := r.MarkRead(ctx, "staff", n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	before, _ := r.List(ctx, "staff")

	// Повторная отметка уже прочитанного и отметка несуществующего id.
	if err := r.MarkRead(ctx, "staff", n.ID); err != nil {
		t.Fatalf("MarkRead again: %v", err)
	}
	if err := r.MarkRead(ctx, "staff", "n_missing"); err != nil {
		t.Fatalf("MarkRead missing id: %v", err)
	}
	after, _ := r.List(ctx, "staff")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("feed must be unchanged: before=%+v after=%+v", before, after)
	}
}

func TestFromNameFallsBackToSenderID(t *testing.T) {
	r := newNotificationRepo(t)
	n, err := r.AddMessageNotification(context.Background(), model.NotificationInput{
		ToUserID: "customer", FromUserID: "staff", PreviewText: "hello",
	})
	if err != nil {
		t.Fatalf("AddMessageNotification: %v", err)
	}
	if n.FromName != "staff" {
		t.Fatalf("expected fallback to sender id, got %q", n.FromName)
	}
}
