package fixpool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tricks_check/attribution"
	"tricks_check/cache"
	"tricks_check/store"
	"tricks_check/wcl"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() *attribution.Snapshot {
	return &attribution.Snapshot{
		GrandTotal: "100.0k",
		Duration:   "2:00",
		Entries: []attribution.RawRow{
			{Identity: "Bob", ValueText: "30.0k"},
			{Identity: "Alice", ValueText: "20.0k"},
			{
				Identity:  "Tricks of the Trade (Alice)",
				ValueText: "5.0k",
				Links:     []attribution.Link{{Text: "Tricks of the Trade (Alice)", Ref: "setFilterSource('17')"}},
			},
			{Identity: "Dave", ValueText: "24.0k"},
			{Identity: "Carol", ValueText: "21.0k"},
		},
	}
}

func newPool(t *testing.T) (*Pool, *store.Ledger) {
	t.Helper()
	dir := t.TempDir()

	cs, err := cache.NewStorage(filepath.Join(dir, "cache"), time.Minute, wcl.TableHash)
	require.NoError(t, err)

	ledger, err := store.Open(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	p := New(Options{Cache: cs, Ledger: ledger})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go p.Run(ctx)

	return p, ledger
}

func TestCheckSnapshotValidation(t *testing.T) {
	assert.True(t, checkSnapshotValidation(snapshot()))

	s := snapshot()
	s.Entries[0].Identity = "  Bob  "
	s.GrandTotal = " 100.0k "
	require.True(t, checkSnapshotValidation(s))
	assert.Equal(t, "Bob", s.Entries[0].Identity)
	assert.Equal(t, "100.0k", s.GrandTotal)

	testCases := []struct {
		name string
		edit func(s *attribution.Snapshot)
	}{
		{"no rows", func(s *attribution.Snapshot) { s.Entries = nil }},
		{"no total", func(s *attribution.Snapshot) { s.GrandTotal = " " }},
		{"no duration", func(s *attribution.Snapshot) { s.Duration = "" }},
		{"no value", func(s *attribution.Snapshot) { s.Entries[1].ValueText = "" }},
		{"no identity", func(s *attribution.Snapshot) { s.Entries[1].Identity = "" }},
		{"long identity", func(s *attribution.Snapshot) { s.Entries[1].Identity = strings.Repeat("a", maxIdentityLen+1) }},
		{"too many rows", func(s *attribution.Snapshot) {
			s.Entries = make([]attribution.RawRow, maxRows+1)
			for i := range s.Entries {
				s.Entries[i] = attribution.RawRow{Identity: "x", ValueText: "1"}
			}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := snapshot()
			tc.edit(s)
			assert.False(t, checkSnapshotValidation(s))
		})
	}
}

func TestResolveLocale(t *testing.T) {
	s := snapshot()
	loc, err := resolveLocale(s, wcl.Default())
	require.NoError(t, err)
	assert.Equal(t, "en", loc.Code)

	s = snapshot()
	s.ReportURL = "https://de.classic.warcraftlogs.com/reports/abc#fight=3"
	loc, err = resolveLocale(s, wcl.Default())
	require.NoError(t, err)
	assert.Equal(t, "de", loc.Code)
	assert.Equal(t, "de", s.Locale)

	s = snapshot()
	s.Locale = "zh-TW"
	s.ReportURL = "https://de.classic.warcraftlogs.com/reports/abc"
	loc, err = resolveLocale(s, wcl.Default())
	require.NoError(t, err)
	assert.Equal(t, "tw", loc.Code)

	s = snapshot()
	s.Locale = "xx-unknown-tag-!!"
	_, err = resolveLocale(s, wcl.Default())
	assert.True(t, errors.Is(err, ErrInvalidSnapshot))
}

func TestToken(t *testing.T) {
	a, b := snapshot(), snapshot()
	assert.Equal(t, Token(a), Token(b))
	assert.Len(t, Token(a), 32)

	b.Entries[0].ValueText = "30.1k"
	assert.NotEqual(t, Token(a), Token(b))

	b = snapshot()
	b.Entries[0], b.Entries[1] = b.Entries[1], b.Entries[0]
	assert.NotEqual(t, Token(a), Token(b))
}

func TestPoolSubmit(t *testing.T) {
	ctx := context.Background()
	p, ledger := newPool(t)

	res, err := p.Submit(ctx, snapshot())
	require.NoError(t, err)

	require.Len(t, res.Rows, 4)
	assert.Equal(t, "Bob", res.Rows[0].Identity)
	assert.Equal(t, "Alice", res.Rows[1].Identity)
	assert.Equal(t, "25.0k", res.Rows[1].ValueText)
	assert.Equal(t, []int{2}, res.RemovedIndexes)

	in := snapshot()
	in.Locale = "en"
	e, ok, err := ledger.Lookup(ctx, Token(in))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, e.Rows)
	assert.Equal(t, 1, e.Removed)

	// cached
	again, err := p.Submit(ctx, snapshot())
	require.NoError(t, err)
	assert.Equal(t, res.Rows[1].ValueText, again.Rows[1].ValueText)
	assert.Equal(t, res.RemovedIndexes, again.RemovedIndexes)

	// the corrected output must not be corrected again
	_, err = p.Submit(ctx, res.Snapshot())
	assert.True(t, errors.Is(err, ErrAlreadyCorrected))
}

func TestPoolSubmitInvalid(t *testing.T) {
	p, _ := newPool(t)

	s := snapshot()
	s.Entries = nil
	_, err := p.Submit(context.Background(), s)
	assert.True(t, errors.Is(err, ErrInvalidSnapshot))

	s = snapshot()
	s.GrandTotal = "zero"
	_, err = p.Submit(context.Background(), s)
	assert.True(t, errors.Is(err, attribution.ErrGrandTotal))
}

func TestPoolSubmitCancelled(t *testing.T) {
	p := New(Options{}) // no worker running

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Submit(ctx, snapshot())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPoolWebsocket(t *testing.T) {
	p, _ := newPool(t)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		p.Do(r.Context(), ws)
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	type event struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}

	var ev event
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, "ready", ev.Event)

	require.NoError(t, ws.WriteJSON(snapshot()))

	var seen []string
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			break
		}
		var raw struct {
			Event string `json:"event"`
		}
		require.NoError(t, jsoniter.Unmarshal(msg, &raw))
		seen = append(seen, raw.Event)

		if raw.Event == "complete" {
			require.NoError(t, jsoniter.Unmarshal(msg, &ev))
			rows := ev.Data["rows"].([]interface{})
			assert.Len(t, rows, 4)
		}
	}

	assert.Contains(t, seen, "complete")
	assert.NotContains(t, seen, "error")
}

func TestPoolWebsocketInvalid(t *testing.T) {
	p := New(Options{})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		p.Do(r.Context(), ws)
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	var ev struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, "ready", ev.Event)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"rows":[]}`)))

	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, "error", ev.Event)
	assert.Equal(t, ErrInvalidSnapshot.Error(), ev.Data)
}
