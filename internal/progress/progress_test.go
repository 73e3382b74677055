package progress

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Counts(t *testing.T) {
	tr := NewTracker(10)

	tr.Step("1000001")
	tr.Step("1000002")
	tr.AddEvents(3)
	tr.AddRestart()

	snap := tr.Snapshot()
	assert.Equal(t, 10, snap.Total)
	assert.Equal(t, 2, snap.Processed)
	assert.Equal(t, 3, snap.Events)
	assert.Equal(t, 1, snap.Restarts)
	assert.Equal(t, 2, tr.Processed())
	assert.Equal(t, 1, tr.Restarts())
}

func TestTracker_StatusEndpoint(t *testing.T) {
	tr := NewTracker(5)
	tr.Step("1000001")

	srv := httptest.NewServer(tr.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, 1, snap.Processed)

	health, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, 200, health.StatusCode)
}
