package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotJSON = `{
	"report_url": "https://de.classic.warcraftlogs.com/reports/abc#fight=4",
	"grand_total": "1.00Mio",
	"duration": "2:00",
	"rows": [
		{"identity": "Bob", "value": "300.0t"},
		{"identity": "Alice", "value": "200.0t"},
		{"identity": "Kniffe und Tricks (Alice)", "value": "150.0t",
		 "links": [{"text": "Kniffe und Tricks (Alice)", "ref": "setFilterSource('9')"}]}
	]
}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	fixFlags.locale = ""
	fixFlags.reportURL = ""
	fixFlags.html = false
	fixFlags.indent = true

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestFixJSON(t *testing.T) {
	out, err := run(t, snapshotJSON, "fix")
	require.NoError(t, err)

	assert.Contains(t, out, `"locale": "de"`)
	assert.Contains(t, out, `"value_text": "350.0t"`)
	assert.Contains(t, out, `"drill_down_url": "https://de.classic.warcraftlogs.com/reports/abc#fight=4\u0026source=9"`)
}

func TestFixFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0600))

	out, err := run(t, "", "fix", "--indent=false", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"identity":"Alice"`)
}

func TestFixBadLocale(t *testing.T) {
	_, err := run(t, snapshotJSON, "fix", "--locale", "nope-nope-nope")
	assert.Error(t, err)

	_, err = run(t, snapshotJSON, "fix", "--html")
	assert.Error(t, err)
}

func TestFixHTML(t *testing.T) {
	page := `<html><body><span class="fight-duration">2:00</span>
<table class="summary-table"><tbody>
<tr class="odd"><td><a>Bob</a></td><td><span class="report-amount-total">30.0k</span></td><td><div class="Warrior-bg" style="width: 100%"></div></td></tr>
<tr class="even"><td><a>Alice</a></td><td><span class="report-amount-total">20.0k</span></td><td><div class="Rogue-bg" style="width: 66.67%"></div></td></tr>
<tr class="odd"><td><a oncontextmenu="setFilterSource('17')">Tricks of the Trade (Alice)</a></td><td><span class="report-amount-total">15.0k</span></td><td><div class="Pet-bg" style="width: 50%"></div></td></tr>
<tr class="totals"><td></td><td><span class="report-amount-total">65.0k</span></td></tr>
</tbody></table></body></html>`

	out, err := run(t, page, "fix", "--html")
	require.NoError(t, err)
	assert.NotContains(t, out, "Tricks of the Trade")
	assert.Less(t, strings.Index(out, ">Alice<"), strings.Index(out, ">Bob<"))
}

func TestLocales(t *testing.T) {
	out, err := run(t, "", "locales")
	require.NoError(t, err)

	assert.Contains(t, out, "de   Mio    t")
	assert.Contains(t, out, "br   m      k      -> en")
}
