package appstate

import (
	"context"
	"testing"
	"time"

	"github.com/workdesk/internal/storage"
	"github.com/workdesk/internal/storage/memory"
)

var testNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.Local)

func newTestStore(t *testing.T, applyLayout LayoutApplier) (*Store, *storage.Store) {
	t.Helper()
	kv := storage.NewStore(memory.New())
	s := NewStore(kv, applyLayout)
	s.now = func() time.Time { return testNow }
	return s, kv
}

func TestHydrateEmptyStoreKeepsDefaults(t *testing.T) {
	s, _ := newTestStore(t, nil)
	st := s.Hydrate(context.Background())

	if !st.Hydrated {
		t.Fatalf("state must be hydrated")
	}
	if st.Session.Role != RoleAdmin || st.Session.UserID != "admin" {
		t.Fatalf("empty store must keep defaults, got %+v", st.Session)
	}
	if st.Session.DisplayName != "Admin" || st.Session.Email != "admin@example.com" || st.Session.Language != "en" {
		t.Fatalf("unexpected default session: %+v", st.Session)
	}
}

func TestHydrateRestoresPersistedSession(t *testing.T) {
	first, kv := newTestStore(t, nil)
	ctx := context.Background()
	first.Hydrate(ctx)
	first.SetRole(ctx, RoleStaff)
	first.SetProfile(ctx, ProfileUpdate{DisplayName: strPtr("Sam")})

	// Новый Store над тем же хранилищем видит сохранённую session.
	second := NewStore(kv, nil)
	st := second.Hydrate(ctx)
	if st.Session.Role != RoleStaff || st.Session.UserID != "staff" {
		t.Fatalf("expected restored staff session, got %+v", st.Session)
	}
	if st.Session.DisplayName != "Sam" {
		t.Fatalf("expected restored profile, got %q", st.Session.DisplayName)
	}
}

func TestSetRoleMapsUserID(t *testing.T) {
	s, _ := newTestStore(t, nil)
	ctx := context.Background()
	s.Hydrate(ctx)

	cases := []struct {
		role Role
		want string
	}{
		{RoleAdmin, "admin"},
		{RoleStaff, "staff"},
		{RoleCustomer, "customer"},
		{Role("guest"), "customer"},
	}
	for _, c := range cases {
		st := s.SetRole(ctx, c.role)
		if st.Session.UserID != c.want {
			t.Fatalf("role %q: userId = %q, want %q", c.role, st.Session.UserID, c.want)
		}
	}
}

func TestSetProfileMergesOnlyProvidedFields(t *testing.T) {
	s, _ := newTestStore(t, nil)
	ctx := context.Background()
	s.Hydrate(ctx)

	st := s.SetProfile(ctx, ProfileUpdate{Mobile: strPtr("+49 170 0000000")})
	if st.Session.Mobile != "+49 170 0000000" {
		t.Fatalf("mobile not applied: %+v", st.Session)
	}
	if st.Session.DisplayName != "Admin" || st.Session.Email != "admin@example.com" {
		t.Fatalf("nil fields must keep previous values: %+v", st.Session)
	}
}

func TestToastDoesNotPersist(t *testing.T) {
	s, kv := newTestStore(t, nil)
	ctx := context.Background()
	s.Hydrate(ctx)

	st := s.Toast(ctx, "saved")
	if st.UI.LastToast == nil || st.UI.LastToast.Message != "saved" {
		t.Fatalf("toast not applied: %+v", st.UI)
	}
	if !st.UI.LastToast.At.Equal(testNow) {
		t.Fatalf("toast timestamp must come from the store clock, got %v", st.UI.LastToast.At)
	}

	var persisted struct {
		Session Session `json:"session"`
		UI      *UI     `json:"ui"`
	}
	ok, err := kv.GetJSON(ctx, "app_state", &persisted)
	if err != nil || !ok {
		t.Fatalf("persisted session must exist: ok=%v err=%v", ok, err)
	}
	if persisted.UI != nil {
		t.Fatalf("UI must never be persisted")
	}
}

func TestSetLanguageAppliesLayout(t *testing.T) {
	var gotLang string
	var gotRTL bool
	calls := 0
	s, _ := newTestStore(t, func(lang string, rtl bool) error {
		calls++
		gotLang, gotRTL = lang, rtl
		return nil
	})
	ctx := context.Background()
	s.Hydrate(ctx)
	calls = 0 // гидратация применяет раскладку для стартового языка

	s.SetLanguage(ctx, "ar")
	if calls != 1 || gotLang != "ar" || !gotRTL {
		t.Fatalf("expected one RTL layout call for ar, got calls=%d lang=%q rtl=%v", calls, gotLang, gotRTL)
	}

	s.SetLanguage(ctx, "ar")
	if calls != 1 {
		t.Fatalf("unchanged language must not reapply layout, calls=%d", calls)
	}

	s.SetLanguage(ctx, "de")
	if calls != 2 || gotLang != "de" || gotRTL {
		t.Fatalf("expected LTR layout call for de, got calls=%d lang=%q rtl=%v", calls, gotLang, gotRTL)
	}
}

func TestMutationsBeforeHydrationAreNotPersisted(t *testing.T) {
	s, kv := newTestStore(t, nil)
	ctx := context.Background()

	s.SetRole(ctx, RoleCustomer)
	var persisted persistedState
	if ok, _ := kv.GetJSON(ctx, "app_state", &persisted); ok {
		t.Fatalf("nothing must be persisted before hydration")
	}

	st := s.Hydrate(ctx)
	if st.Session.Role != RoleCustomer {
		t.Fatalf("in-memory mutation must survive hydration over an empty store, got %+v", st.Session)
	}
}

func TestIsRTL(t *testing.T) {
	for _, lang := range []string{"ar", "he"} {
		if !IsRTL(lang) {
			t.Fatalf("%s must be RTL", lang)
		}
	}
	for _, lang := range []string{"en", "de", "ru", ""} {
		if IsRTL(lang) {
			t.Fatalf("%s must not be RTL", lang)
		}
	}
}

func strPtr(s string) *string { return &s }
