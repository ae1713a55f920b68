package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/fabestimate/internal/db"
	"github.com/Simplici0/fabestimate/internal/document"
	"github.com/Simplici0/fabestimate/internal/estimate"
	"github.com/Simplici0/fabestimate/internal/migrations"
	"github.com/Simplici0/fabestimate/internal/seed"
)

const gateJob = `
client: Acme Builders
settings:
  profit_margin: 15
  advance_percentage: "10"
estimate:
  items:
    - name: Steel Gate
      qty: 1
      unit: pc
      base_rate: 10000
  days: 2
  labor_details:
    - role: Welder
      count: 1
      rate: 500
    - role: Helper
      count: 1
      rate: 200
`

func writeJob(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadJob_YAML(t *testing.T) {
	t.Parallel()

	j, err := loadJob(writeJob(t, "gate.yaml", gateJob))
	require.NoError(t, err)
	assert.Equal(t, "Acme Builders", j.Client)
	require.NotNil(t, j.Settings)
	assert.Equal(t, "10", j.Settings.AdvancePercent.String())
	require.Len(t, j.Estimate.LaborDetails, 2)
}

func TestLoadJob_JSON(t *testing.T) {
	t.Parallel()

	j, err := loadJob(writeJob(t, "gate.json", `{"client": "Acme", "estimate": {"items": [{"name": "Rail", "qty": "3", "base_rate": 100}], "profit_margin": {"profit_margin": 20}}}`))
	require.NoError(t, err)
	assert.Nil(t, j.Settings)

	res, err := estimate.ComputeRequest(j.Estimate, estimate.Settings{})
	require.NoError(t, err)
	assert.Equal(t, "20", res.ProfitMarginPercent.String())
}

func TestLoadJob_Missing(t *testing.T) {
	t.Parallel()

	_, err := loadJob(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRunCalc(t *testing.T) {
	t.Parallel()

	j, err := loadJob(writeJob(t, "gate.yaml", gateJob))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runCalc(&buf, j, *j.Settings))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "1400", out["labor_actual_cost"])
	assert.Equal(t, "13110", out["bill_amount"])
	assert.Equal(t, "1311", out["advance_amount"])
}

func TestRunCalc_InvalidMargin(t *testing.T) {
	t.Parallel()

	j, err := loadJob(writeJob(t, "bad.yaml", "estimate:\n  profit_margin: lots\n"))
	require.NoError(t, err)

	err = runCalc(&bytes.Buffer{}, j, estimate.Settings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lots")
}

func TestRenderJob(t *testing.T) {
	t.Parallel()

	j, err := loadJob(writeJob(t, "gate.yaml", gateJob))
	require.NoError(t, err)
	r := document.NewRenderer(document.Options{Now: func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }})

	out, ext, err := renderJob(r, j, *j.Settings, "html", false)
	require.NoError(t, err)
	assert.Equal(t, "html", ext)
	assert.Contains(t, string(out), "Grand Total: ₹13,110")
	assert.Contains(t, string(out), "Client: <strong>Acme Builders</strong>")

	out, ext, err = renderJob(r, j, *j.Settings, "PDF", true)
	require.NoError(t, err)
	assert.Equal(t, "pdf", ext)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	out, _, err = renderJob(r, j, *j.Settings, "report", false)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "Internal Profit Report"))

	_, _, err = renderJob(r, j, *j.Settings, "odt", false)
	assert.Error(t, err)
}

func TestResolveSettings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "cli.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, migrations.Up(ctx, database))
	_, err = seed.Run(ctx, database)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	withSettings, err := loadJob(writeJob(t, "a.yaml", gateJob))
	require.NoError(t, err)
	st, err := resolveSettings(ctx, withSettings, true, dbPath)
	require.NoError(t, err)
	assert.Equal(t, "15", st.DefaultProfitMarginPercent.String(), "the job's own settings win")

	bare := job{}
	st, err = resolveSettings(ctx, bare, false, dbPath)
	require.NoError(t, err)
	assert.False(t, st.AdvancePercent.IsSet())

	st, err = resolveSettings(ctx, bare, true, dbPath)
	require.NoError(t, err)
	assert.Equal(t, "500", st.LegacyPrimaryDailyRate.String())
}
