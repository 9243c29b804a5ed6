package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siport/internal/types"
)

func newTestRegistry() *Registry {
	return NewRegistry(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_StateForIsStablePerUser(t *testing.T) {
	r := newTestRegistry()

	alice := r.StateFor("alice")
	require.Same(t, alice, r.StateFor("alice"))
	require.NotSame(t, alice, r.StateFor("bob"))
}

func TestRegistry_UsageIsIsolatedBetweenUsers(t *testing.T) {
	r := newTestRegistry()

	r.StateFor("alice").Usage().RecordUse(types.ActionMessage)
	r.StateFor("alice").Usage().RecordUse(types.ActionMessage)

	assert.Equal(t, 2, r.StateFor("alice").Usage().Peek().Messages)
	assert.Zero(t, r.StateFor("bob").Usage().Peek().Messages)
}

func TestRegistry_ResetOnlyTouchesOneUser(t *testing.T) {
	r := newTestRegistry()

	r.StateFor("alice").Usage().RecordUse(types.ActionConnection)
	r.StateFor("alice").AddFavorite("exh-1")
	r.StateFor("bob").Usage().RecordUse(types.ActionConnection)
	bob := r.StateFor("bob")

	r.Reset("alice")

	// Alice starts over; bob keeps his entry and his counters.
	assert.Zero(t, r.StateFor("alice").Usage().Peek().Connections)
	assert.Empty(t, r.StateFor("alice").Favorites())
	require.Same(t, bob, r.StateFor("bob"))
	assert.Equal(t, 1, r.StateFor("bob").Usage().Peek().Connections)
}

func TestRegistry_ResetEmptiesHeldReferences(t *testing.T) {
	r := newTestRegistry()

	held := r.StateFor("alice")
	held.Usage().RecordUse(types.ActionMeeting)

	r.Reset("alice")

	// A handler still holding the old State must not read stale data.
	assert.Zero(t, held.Usage().Peek().Meetings)
	require.NotSame(t, held, r.StateFor("alice"))
}

func TestRegistry_ResetUnknownUserIsNoOp(t *testing.T) {
	r := newTestRegistry()
	r.Reset("nobody")
	assert.Zero(t, r.StateFor("nobody").Usage().Peek().Messages)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := newTestRegistry()
	users := []string{"alice", "bob", "carol"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, u := range users {
			wg.Add(2)
			go func(u string) {
				defer wg.Done()
				r.StateFor(u).Usage().RecordUse(types.ActionMessage)
			}(u)
			go func(u string) {
				defer wg.Done()
				_ = r.StateFor(u).Usage().Peek()
			}(u)
		}
		if i == 25 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Reset("carol")
			}()
		}
	}
	wg.Wait()

	// alice and bob were never reset, so their counters are exact.
	assert.Equal(t, 50, r.StateFor("alice").Usage().Peek().Messages)
	assert.Equal(t, 50, r.StateFor("bob").Usage().Peek().Messages)
}
