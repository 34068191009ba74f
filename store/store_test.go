package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLedger(t *testing.T) *Ledger {
	t.Helper()

	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedgerMarkProcessed(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	_, ok, err := l.Lookup(ctx, "in")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.MarkProcessed(ctx, Entry{
		InputToken:  "in",
		OutputToken: "out",
		Locale:      "en",
		Rows:        3,
		Removed:     1,
	}))

	e, ok, err := l.Lookup(ctx, "in")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "out", e.OutputToken)
	assert.Equal(t, "en", e.Locale)
	assert.Equal(t, 3, e.Rows)
	assert.Equal(t, 1, e.Removed)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestLedgerIsCorrectedOutput(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	require.NoError(t, l.MarkProcessed(ctx, Entry{InputToken: "in", OutputToken: "out", Locale: "en"}))

	ok, err := l.IsCorrectedOutput(ctx, "out")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.IsCorrectedOutput(ctx, "in")
	require.NoError(t, err)
	assert.False(t, ok)

	// a snapshot without donor rows corrects to itself
	require.NoError(t, l.MarkProcessed(ctx, Entry{InputToken: "same", OutputToken: "same", Locale: "en"}))
	ok, err = l.IsCorrectedOutput(ctx, "same")
	require.NoError(t, err)
	assert.False(t, ok)
}
