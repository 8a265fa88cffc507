package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sendflowai/sendflow-go/internal/server"
	"github.com/sendflowai/sendflow-go/pkg/core"
	"github.com/sendflowai/sendflow-go/pkg/storage/fake"
)

func setupServerTest(t *testing.T) (*httptest.Server, func()) {
	client, err := core.NewClientWithStore(nil, fake.NewStore())
	require.NoError(t, err)

	srv := server.New(":0", client, nil)
	ts := httptest.NewServer(srv.Handler())

	cleanup := func() {
		ts.Close()
		_ = client.Close()
	}

	return ts, cleanup
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	ts, cleanup := setupServerTest(t)
	defer cleanup()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStoreAndRetrieveMemory(t *testing.T) {
	ts, cleanup := setupServerTest(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/memory", map[string]interface{}{
		"lead_id":     "lead-1",
		"memory_type": "factual",
		"content":     map[string]interface{}{"budget": map[string]interface{}{"max": 450000}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var stored core.MemoryRecord
	decodeJSON(t, resp, &stored)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, core.DefaultConfidence, stored.Confidence)

	getResp, err := http.Get(ts.URL + "/memory?lead_id=lead-1&memory_type=factual")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var result struct {
		Memories []core.MemoryRecord `json:"memories"`
	}
	decodeJSON(t, getResp, &result)
	require.Len(t, result.Memories, 1)
	assert.Equal(t, stored.ID, result.Memories[0].ID)
	assert.Equal(t, 1, result.Memories[0].RetrievalCount)
}

func TestStoreMemory_BadRequests(t *testing.T) {
	ts, cleanup := setupServerTest(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/memory", map[string]interface{}{
		"lead_id":     "lead-1",
		"memory_type": "bogus",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/memory", map[string]interface{}{
		"lead_id":          "lead-1",
		"memory_type":      "factual",
		"confidence_level": 1.5,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	badJSON, err := http.Post(ts.URL+"/memory", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer badJSON.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badJSON.StatusCode)
}

func TestSynthesizeContextEndpoint(t *testing.T) {
	ts, cleanup := setupServerTest(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/memory", map[string]interface{}{
		"lead_id":     "lead-1",
		"memory_type": "factual",
		"content":     map[string]interface{}{"budget": map[string]interface{}{"max": 450000}},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	getResp, err := http.Get(ts.URL + "/memory/context/lead-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var lc map[string]interface{}
	decodeJSON(t, getResp, &lc)

	assert.Equal(t, "lead-1", lc["lead_id"])
	assert.NotEmpty(t, lc["synthesis_timestamp"])

	factual, ok := lc["factual_information"].(map[string]interface{})
	require.True(t, ok)
	budget, ok := factual["budget"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(450000), budget["max"])

	// Sections without records are present and empty.
	for _, key := range []string{"relationship_insights", "strategic_recommendations", "situational_awareness"} {
		section, ok := lc[key].(map[string]interface{})
		require.True(t, ok, "missing section %s", key)
		assert.Empty(t, section)
	}
}

func TestKnowledgeEndpoints(t *testing.T) {
	ts, cleanup := setupServerTest(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/knowledge", map[string]interface{}{
		"org_id":       "org-1",
		"title":        "Rate objection script",
		"content":      "pivot to monthly payment framing",
		"content_type": "script",
		"metadata":     map[string]interface{}{"source": "crm"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item core.KnowledgeItem
	decodeJSON(t, resp, &item)
	assert.NotZero(t, item.ID)
	assert.Equal(t, map[string]interface{}{"source": "crm"}, item.Metadata)

	searchResp, err := http.Get(ts.URL + "/knowledge?org_id=org-1&query=script+for+objections")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, searchResp.StatusCode)

	var result struct {
		Items []core.KnowledgeItem `json:"items"`
	}
	decodeJSON(t, searchResp, &result)
	require.Len(t, result.Items, 1)
	assert.Equal(t, item.ID, result.Items[0].ID)
	assert.Equal(t, map[string]interface{}{"source": "crm"}, result.Items[0].Metadata)

	badResp := postJSON(t, ts.URL+"/knowledge", map[string]interface{}{
		"org_id":       "org-1",
		"title":        "Video walkthrough",
		"content_type": "video",
	})
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestCadenceEndpoint(t *testing.T) {
	ts, cleanup := setupServerTest(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/memory", map[string]interface{}{
		"lead_id":     "lead-1",
		"memory_type": "factual",
		"content":     map[string]interface{}{"budget": 450000},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cadResp, err := http.Get(ts.URL + "/leads/lead-1/cadence")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, cadResp.StatusCode)

	var rec map[string]interface{}
	decodeJSON(t, cadResp, &rec)

	assert.Equal(t, "lead-1", rec["lead_id"])
	engagement, ok := rec["engagement"].(float64)
	require.True(t, ok)
	assert.Greater(t, engagement, 0.0)
	assert.NotEmpty(t, rec["next_touch_at"])
}

func TestRetrieveMemories_LimitParam(t *testing.T) {
	ts, cleanup := setupServerTest(t)
	defer cleanup()

	for i := 0; i < 4; i++ {
		resp := postJSON(t, ts.URL+"/memory", map[string]interface{}{
			"lead_id":     "lead-1",
			"memory_type": "factual",
			"content":     map[string]interface{}{"i": i},
		})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	getResp, err := http.Get(ts.URL + "/memory?lead_id=lead-1&limit=2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var result struct {
		Memories []core.MemoryRecord `json:"memories"`
	}
	decodeJSON(t, getResp, &result)
	assert.Len(t, result.Memories, 2)

	badResp, err := http.Get(fmt.Sprintf("%s/memory?lead_id=lead-1&limit=%s", ts.URL, "abc"))
	require.NoError(t, err)
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}
