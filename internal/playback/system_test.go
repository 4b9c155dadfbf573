package playback_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/script"
	"github.com/joeycumines/walkthrough/internal/surface"
	"github.com/joeycumines/walkthrough/internal/testutil"
)

// Runs on the wall clock with the default scheduler.
func TestSystemSchedulerAutoplay(t *testing.T) {
	t.Parallel()
	meta, steps := agentSteps()
	s, err := script.New(meta, steps)
	require.NoError(t, err)

	notifier := surface.NewNotifier()
	board := surface.New(meta.Diagram, surface.WithNotify(notifier.Notify))
	engine := playback.New(s, board.Surfaces(),
		playback.WithCharsPerSecond(2000),
		playback.WithAutoplayDelay(5*time.Millisecond),
		playback.WithStreamPad(time.Millisecond),
	)
	t.Cleanup(engine.Close)

	engine.ToggleAutoplay()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	status, err := testutil.WaitForState(ctx, engine.State,
		func(st playback.Status) bool { return !st.Autoplaying },
		5*time.Second, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, len(steps)-1, status.Cursor)
	assert.False(t, engine.IsStreaming())

	snap := board.Snapshot()
	require.Len(t, snap.Bubbles, 2)
	assert.Equal(t, "It is 4.", snap.Bubbles[1].Text)

	select {
	case <-notifier.C():
	default:
		t.Fatal("expected a change notification")
	}
}

func TestSystemSchedulerStreamStopsOnClose(t *testing.T) {
	t.Parallel()
	s, err := script.New(script.Meta{}, []script.Step{
		{Transcript: []script.Entry{{Role: script.RoleAssistant, Text: "slow text", Streamed: true}}},
	})
	require.NoError(t, err)
	board := surface.New(script.Diagram{})
	engine := playback.New(s, board.Surfaces(), playback.WithCharsPerSecond(1))

	require.True(t, engine.Advance())
	require.True(t, engine.IsStreaming())
	engine.Close()

	assert.False(t, engine.IsStreaming())
	assert.Equal(t, "slow text", board.Snapshot().Entries[0].Text)

	// The one-second tick was stopped, so nothing changes afterwards.
	err = testutil.Poll(context.Background(), func() bool {
		return board.Snapshot().Entries[0].Text != "slow text"
	}, 1500*time.Millisecond, 50*time.Millisecond)
	assert.Error(t, err)
}
