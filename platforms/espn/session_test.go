package espn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/mock"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/store"
	"github.com/morganjb52/ffb/store/mockstore"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()

	sessions, err := store.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	defer sessions.Close()

	session, err := LoadSession(ctx, clk, sessions)
	if err != nil {
		t.Fatalf("unexpected error loading session: %v", err)
	}
	if session.IsAuthenticated(ctx) {
		t.Error("a fresh session should not be authenticated")
	}
	if session.Cookie(ctx) != "" {
		t.Error("a fresh session should have no cookie")
	}

	if err := session.Set(ctx, "user@example.com", "espn_s2=abc"); err != nil {
		t.Fatalf("unexpected error setting session: %v", err)
	}
	if !session.IsAuthenticated(ctx) {
		t.Error("session should be authenticated after login")
	}
	if session.Cookie(ctx) != "espn_s2=abc" {
		t.Errorf("unexpected cookie: %s", session.Cookie(ctx))
	}

	// just inside the expiry window
	clk.Add(7*24*time.Hour - time.Minute)
	if !session.IsAuthenticated(ctx) {
		t.Error("session should still be live inside the expiry window")
	}

	clk.Add(2 * time.Minute)
	if session.IsAuthenticated(ctx) {
		t.Error("session should expire past the window")
	}
	if _, err := sessions.Get(ctx, model.PlatformESPN); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("expired session should be cleared from the store, got: %v", err)
	}
}

func TestSessionSurvivesReload(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()

	sessions, err := store.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	defer sessions.Close()

	first, err := LoadSession(ctx, clk, sessions)
	if err != nil {
		t.Fatalf("unexpected error loading session: %v", err)
	}
	if err := first.Set(ctx, "user@example.com", "espn_s2=abc"); err != nil {
		t.Fatalf("unexpected error setting session: %v", err)
	}

	second, err := LoadSession(ctx, clk, sessions)
	if err != nil {
		t.Fatalf("unexpected error reloading session: %v", err)
	}
	if !second.IsAuthenticated(ctx) {
		t.Error("a reloaded session should still be authenticated")
	}
	if second.Username() != "user@example.com" {
		t.Errorf("unexpected username after reload: %s", second.Username())
	}
}

func TestSessionExpiryClearsStoreOnce(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	clk.Add(30 * 24 * time.Hour)

	sessions := &mockstore.Store{}
	sessions.On("Get", mock.Anything, model.PlatformESPN).Return(&model.PlatformConnection{
		Platform:  model.PlatformESPN,
		Connected: true,
		Username:  "user@example.com",
		Cookie:    "espn_s2=stale",
		ExpiresAt: clk.Now().Add(-time.Hour),
	}, nil)
	sessions.On("Delete", mock.Anything, model.PlatformESPN).Return(nil)

	session, err := LoadSession(ctx, clk, sessions)
	if err != nil {
		t.Fatalf("unexpected error loading session: %v", err)
	}

	if session.IsAuthenticated(ctx) {
		t.Error("a stale session should not be authenticated")
	}
	if session.IsAuthenticated(ctx) {
		t.Error("a cleared session should stay unauthenticated")
	}

	sessions.AssertNumberOfCalls(t, "Delete", 1)
}

func TestSessionClear(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()

	sessions, err := store.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	defer sessions.Close()

	session, err := LoadSession(ctx, clk, sessions)
	if err != nil {
		t.Fatalf("unexpected error loading session: %v", err)
	}
	if err := session.Set(ctx, "user@example.com", "espn_s2=abc"); err != nil {
		t.Fatalf("unexpected error setting session: %v", err)
	}

	if err := session.Clear(ctx); err != nil {
		t.Fatalf("unexpected error clearing session: %v", err)
	}
	if session.IsAuthenticated(ctx) {
		t.Error("a cleared session should not be authenticated")
	}
	if _, err := sessions.Get(ctx, model.PlatformESPN); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("clear should remove the persisted session, got: %v", err)
	}
}
