// Package storetest opens isolated in-memory databases for tests.
package storetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/massikone/massikone/internal/store"
)

var seq atomic.Int64

// New returns a freshly migrated in-memory store that is closed when the
// test ends.
func New(t testing.TB) *store.Store {
	t.Helper()
	url := fmt.Sprintf("file:massikone_test_%d?mode=memory&cache=shared", seq.Add(1))
	s, err := store.Open(context.Background(), url, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
