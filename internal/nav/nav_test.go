package nav

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalTarget(t *testing.T) {
	tests := []struct {
		kind SignalKind
		want string
	}{
		{SignalSessionExpired, "/auth/login?session=expired"},
		{SignalForbidden, "/unauthorized"},
		{SignalLoggedOut, "/auth/login"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Signal{Kind: tt.kind}.Target())
		})
	}
}

func TestBus_CoalescesPendingSignals(t *testing.T) {
	b := NewBus()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Emit(Signal{Kind: SignalSessionExpired, Source: "/api/projects"})
		}()
	}
	wg.Wait()
	b.Emit(Signal{Kind: SignalForbidden})

	first, ok := b.Next()
	require.True(t, ok)
	second, ok := b.Next()
	require.True(t, ok)
	_, ok = b.Next()
	assert.False(t, ok, "duplicates of a pending kind are dropped")

	assert.Equal(t, SignalSessionExpired, first.Kind)
	assert.Equal(t, SignalForbidden, second.Kind)
}

func TestBus_RearmsAfterDone(t *testing.T) {
	b := NewBus()
	b.Emit(Signal{Kind: SignalSessionExpired})

	s := <-b.Signals()
	b.Emit(Signal{Kind: SignalSessionExpired})
	_, ok := b.Next()
	assert.False(t, ok, "still pending until Done")

	b.Done(s)
	b.Emit(Signal{Kind: SignalSessionExpired})
	_, ok = b.Next()
	assert.True(t, ok)
}

func TestRouter_NavigateAndBack(t *testing.T) {
	r := NewRouter(DashboardPath)
	assert.False(t, r.Navigate(DashboardPath), "same route is not a change")

	require.True(t, r.Navigate("/dashboard/developer"))
	assert.Equal(t, "/dashboard/developer", r.Current())

	require.True(t, r.Back())
	assert.Equal(t, DashboardPath, r.Current())
	assert.False(t, r.Back())
}

func TestRouter_HandleSessionExpired(t *testing.T) {
	r := NewRouter("/dashboard/user")
	got := r.Handle(Signal{Kind: SignalSessionExpired})

	assert.Equal(t, "/auth/login?session=expired", got)
	assert.Equal(t, LoginPath, r.Path())
	assert.Equal(t, "expired", r.Query(SessionExpiredParam))
}
