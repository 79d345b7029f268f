package reindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/reindexer/internal/reindex"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	t.Run("forward path", func(t *testing.T) {
		t.Parallel()
		path := []reindex.State{
			reindex.StateStart, reindex.StateTargetResolved, reindex.StateIndexEnsured,
			reindex.StateExtracted, reindex.StateTransformed, reindex.StateLoaded,
			reindex.StateAliased, reindex.StateStaleDeleted, reindex.StateDone,
		}
		for i := 1; i < len(path); i++ {
			assert.True(t, reindex.CanTransition(path[i-1], path[i]), "%s -> %s", path[i-1], path[i])
		}
		assert.True(t, reindex.CanTransition(reindex.StateAliased, reindex.StateDone), "stale deletion is optional")
	})

	t.Run("failed from every non-terminal state", func(t *testing.T) {
		t.Parallel()
		for _, s := range []reindex.State{
			reindex.StateStart, reindex.StateTargetResolved, reindex.StateIndexEnsured,
			reindex.StateExtracted, reindex.StateTransformed, reindex.StateLoaded,
			reindex.StateAliased, reindex.StateStaleDeleted,
		} {
			assert.True(t, reindex.CanTransition(s, reindex.StateFailed), s)
		}
	})

	t.Run("illegal moves", func(t *testing.T) {
		t.Parallel()
		assert.False(t, reindex.CanTransition(reindex.StateStart, reindex.StateLoaded), "no skipping")
		assert.False(t, reindex.CanTransition(reindex.StateLoaded, reindex.StateTransformed), "no going back")
		assert.False(t, reindex.CanTransition(reindex.StateLoaded, reindex.StateDone), "alias before done")
		assert.False(t, reindex.CanTransition(reindex.StateDone, reindex.StateFailed))
		assert.False(t, reindex.CanTransition(reindex.StateFailed, reindex.StateStart))
	})
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()

	assert.True(t, reindex.StateDone.Terminal())
	assert.True(t, reindex.StateFailed.Terminal())
	assert.False(t, reindex.StateAliased.Terminal())
	assert.Equal(t, "STALE_DELETED", reindex.StateStaleDeleted.String())
}

func TestTransitionError(t *testing.T) {
	t.Parallel()

	err := &reindex.TransitionError{From: reindex.StateStart, To: reindex.StateDone}
	assert.ErrorIs(t, err, reindex.ErrInvalidTransition)
	assert.Equal(t, "no transition from state 'START' to 'DONE'", err.Error())
}
