package observability_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echosurvey/internal/observability"
)

func TestMetricsAreIndependent(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()

	a.Items.WithLabelValues("convert", "succeeded").Inc()
	a.Items.WithLabelValues("convert", "succeeded").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.Items.WithLabelValues("convert", "succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Items.WithLabelValues("convert", "succeeded")))
}

func TestWriteTextfile(t *testing.T) {
	m := observability.NewMetrics()
	m.Failures.WithLabelValues("survey", "missing_data").Inc()
	m.SummaryRows.Set(12)
	started := time.Date(2017, 7, 20, 12, 0, 0, 0, time.UTC)
	m.ObserveRun("survey", started, started.Add(42*time.Second))

	path := filepath.Join(t.TempDir(), "echosurvey.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	for _, want := range []string{
		`echosurvey_item_failures_total{class="missing_data",stage="survey"} 1`,
		`echosurvey_summary_rows 12`,
		`echosurvey_run_duration_seconds_count{command="survey"} 1`,
	} {
		assert.True(t, strings.Contains(text, want), "missing %q in\n%s", want, text)
	}
}
