package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioArgs = []string{"--name", "Ada", "--date", "1990-06-15", "--time", "14:30", "--lat", "40.7128", "--lon=-74.006"}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHash(t *testing.T) {
	out, err := run(t, append([]string{"hash"}, scenarioArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, "fbad8101debafe5b\n", out)
}

func TestComputeTable(t *testing.T) {
	out, err := run(t, append([]string{"compute"}, scenarioArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Chart fbad8101debafe5b  Ada")
	assert.Contains(t, out, "Sun Gemini  Moon Pisces  Rising Leo")
	assert.Contains(t, out, "Pluto")
}

func TestComputeJSON(t *testing.T) {
	out, err := run(t, append([]string{"compute", "--json"}, scenarioArgs...)...)
	require.NoError(t, err)

	var chart struct {
		Hash string `json:"chart_hash"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &chart))
	assert.Equal(t, "fbad8101debafe5b", chart.Hash)
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	_, err := run(t, "compute", "--date", "1990-06-15", "--lat", "95", "--lon", "0")
	assert.Error(t, err)

	_, err = run(t, "compute", "--date", "1990-06-15", "--lat", "10")
	assert.ErrorContains(t, err, "lon")
}

func TestGetFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/charts/fbad8101debafe5b", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"message":"OK","data":{"chart_hash":"fbad8101debafe5b","source":"cache"}}`))
	}))
	defer srv.Close()

	out, err := run(t, "get", "fbad8101debafe5b", "--server", srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"source": "cache"`), out)
}
