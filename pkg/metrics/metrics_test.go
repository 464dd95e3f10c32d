package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	c := NewCollector()
	c.Observe(types.Result{Format: "json", Status: types.StatusWritten, Bytes: 120})
	c.Observe(types.Result{Format: "json", Status: types.StatusWritten, Bytes: 80})
	c.Observe(types.Result{Format: "toml", Status: types.StatusUnchanged, Bytes: 10})
	c.Observe(types.Result{Status: types.StatusFailed})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Files.WithLabelValues("json", "written")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Files.WithLabelValues("toml", "unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Files.WithLabelValues("unknown", "failed")))
	assert.Equal(t, 3, testutil.CollectAndCount(c.Files))
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.Observe(types.Result{Format: "yaml", Status: types.StatusWritten, Bytes: 42})
	c.RunCompleted(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "confsynth.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `confsynth_files_total{format="yaml",status="written"} 1`)
	assert.Contains(t, text, "confsynth_file_bytes_count 1")
	assert.Contains(t, text, "confsynth_last_run_timestamp_seconds 1.7e+09")
}
