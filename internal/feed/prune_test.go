package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviation_briefing/internal/observability"
)

type fakeExpiryStore struct {
	calls chan time.Time
	errs  []error
}

func (f *fakeExpiryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	f.calls <- cutoff
	return 1, err
}

func TestPruneExpired_RunsEveryInterval(t *testing.T) {
	start := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	store := &fakeExpiryStore{calls: make(chan time.Time, 4), errs: []error{errors.New("db down")}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		PruneExpired(ctx, store, time.Hour, clock, observability.DiscardLogger())
		close(done)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	for i := 1; i <= 2; i++ {
		clock.Advance(time.Hour)
		select {
		case cutoff := <-store.calls:
			assert.Equal(t, start.Add(time.Duration(i)*time.Hour), cutoff)
		case <-time.After(5 * time.Second):
			t.Fatalf("prune pass %d did not run", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("PruneExpired did not stop on cancel")
	}
}
