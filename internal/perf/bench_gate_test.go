package perf

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/testing/memstore"
	"github.com/odyssey-erp/odyssey-auth/internal/token"
)

func newGateFixture(tb testing.TB) (*rbac.Gate[*auth.User], string) {
	tb.Helper()
	store, err := memstore.Seeded()
	require.NoError(tb, err)
	role, err := store.FindRoleByName(context.Background(), shared.RoleUser)
	require.NoError(tb, err)

	user := &auth.User{ID: uuid.New(), Email: "bench@example.com", IsActive: true, RoleID: role.ID}
	require.NoError(tb, store.Create(context.Background(), user))

	codec, err := token.NewCodec("bench-secret", "HS256")
	require.NoError(tb, err)
	raw, err := codec.Issue(user.ID.String(), user.Email, time.Hour)
	require.NoError(tb, err)
	return rbac.NewGate[*auth.User](codec, store, nil, nil), raw
}

func BenchmarkGateAuthorize(b *testing.B) {
	gate, raw := newGateFixture(b)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gate.Authorize(ctx, raw, shared.PermUpdatePost); err != nil {
			b.Fatal(err)
		}
	}
}

func TestGateLatencyTarget(t *testing.T) {
	gate, raw := newGateFixture(t)
	ctx := context.Background()

	samples := make([]time.Duration, 0, 200)
	for i := 0; i < cap(samples); i++ {
		start := time.Now()
		_, err := gate.Authorize(ctx, raw, shared.PermListProduct)
		samples = append(samples, time.Since(start))
		require.NoError(t, err)
	}
	if p95 := percentile95(samples); p95 > 50*time.Millisecond {
		t.Fatalf("gate latency regression: p95=%s threshold=%s", p95, 50*time.Millisecond)
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
