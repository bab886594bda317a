package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/snakes-and-ladders/game/engine"
)

func createTestRules() *engine.Rules {
	rules := engine.DefaultRules()
	rules.Seed = 21
	return rules
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	rules := createTestRules()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", rules)
		require.NoError(t, err)
		assert.Equal(t, "test-session", session.ID)
		require.NotNil(t, session.Engine)
		assert.Equal(t, engine.NotStarted, session.Engine.Status())
		assert.Equal(t, rules, session.Rules)
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", rules)
		require.NoError(t, err)
		assert.Len(t, session.ID, 4)
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", rules)
		assert.True(t, errors.Is(err, ErrSessionAlreadyExists))
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", rules)
		assert.True(t, errors.Is(err, ErrInvalidSessionID))
	})

	t.Run("nil rules use the classic preset", func(t *testing.T) {
		session, err := manager.Create("defaults", nil)
		require.NoError(t, err)
		assert.Equal(t, "classic", session.Rules.Name)
	})

	t.Run("invalid rules", func(t *testing.T) {
		bad := engine.DefaultRules()
		bad.PathMode = "zigzag"
		_, err := manager.Create("bad-rules", bad)
		assert.True(t, errors.Is(err, engine.ErrInvalidRules))
		assert.False(t, manager.sessionExists("bad-rules"))
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("Get-Me", createTestRules())
	require.NoError(t, err)

	for _, id := range []string{"Get-Me", "get-me", "GET-ME"} {
		got, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, got)
	}

	_, err = manager.Get("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("del", createTestRules())
	require.NoError(t, err)

	require.NoError(t, manager.Delete("DEL"))
	assert.Equal(t, 0, manager.Count())
	assert.True(t, errors.Is(manager.Delete("del"), ErrSessionNotFound))
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		s, err := manager.Create(fmt.Sprintf("list-%d", i), createTestRules())
		require.NoError(t, err)
		ids[s.ID] = true
	}

	sessions := manager.List()
	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.True(t, ids[s.ID], s.ID)
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	rules := createTestRules()

	_, _ = manager.Create("active", rules)
	_, _ = manager.Create("expired", rules)

	manager.sessions["expired"].LastAccessedAt = time.Now().Add(-2 * time.Hour)
	manager.sessions["active"].LastAccessedAt = time.Now()

	assert.Equal(t, 1, manager.CleanupExpiredSessions(time.Hour))

	_, err := manager.Get("expired")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	_, err = manager.Get("active")
	assert.NoError(t, err)
}

func TestManager_RunCleanup(t *testing.T) {
	manager := NewManager()
	_, _ = manager.Create("stale", createTestRules())
	manager.sessions["stale"].LastAccessedAt = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.RunCleanup(ctx, 5*time.Millisecond, time.Minute)
		close(done)
	}()

	assert.Eventually(t, func() bool { return manager.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop after cancel")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("access-test", createTestRules())
	original := session.LastAccessedAt

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, manager.UpdateLastAccessed("ACCESS-TEST"))
	updated, _ := manager.Get("access-test")
	assert.True(t, updated.LastAccessedAt.After(original))

	assert.True(t, errors.Is(manager.UpdateLastAccessed("nope"), ErrSessionNotFound))
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	rules := createTestRules()

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c-%d", i%25)
			if _, err := manager.Create(id, rules); err != nil && !errors.Is(err, ErrSessionAlreadyExists) {
				errs <- err
			}
			if _, err := manager.Get(id); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error during concurrent access: %v", err)
	}
	assert.Equal(t, 25, manager.Count())
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	s1, _ := manager.Create("iso-1", createTestRules())
	s2, _ := manager.Create("iso-2", createTestRules())

	require.NoError(t, s1.Engine.StartGame(2, nil))

	assert.Equal(t, engine.InProgress, s1.Engine.Status())
	assert.Equal(t, engine.NotStarted, s2.Engine.Status())
	assert.Empty(t, s2.Engine.Players())
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	rules := createTestRules()

	generated := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", rules)
		require.NoError(t, err)
		assert.False(t, generated[session.ID], "duplicate session ID %s", session.ID)
		generated[session.ID] = true
		assert.Len(t, session.ID, 4)
	}
}

func TestManager_ReturnsCopies(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("Copy-Test", createTestRules())
	require.NoError(t, err)

	stale := time.Now().Add(-time.Hour)
	created.LastAccessedAt = stale
	got, err := manager.Get("copy-test")
	require.NoError(t, err)
	got.LastAccessedAt = stale
	for _, s := range manager.List() {
		s.LastAccessedAt = stale
	}

	assert.Equal(t, 0, manager.CleanupExpiredSessions(time.Minute))
	assert.Same(t, created.Engine, manager.sessions["copy-test"].Engine)
}
