package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdery/coldreach/internal/monitor"
)

func hotLeads(n int) []monitor.HotLead {
	leads := make([]monitor.HotLead, n)
	for i := range leads {
		leads[i] = monitor.HotLead{
			Email:      "lead@example.com",
			CampaignID: "c1",
			Excerpt:    "Sounds interesting, tell me more",
		}
	}
	return leads
}

func TestNew_ValidatesURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)

	n, err := New("")
	require.NoError(t, err)
	assert.False(t, n.Enabled())
}

func TestHotLeads_SendsSlackMessage(t *testing.T) {
	var captured message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
	}))
	defer srv.Close()

	n, err := New(srv.URL)
	require.NoError(t, err)

	require.NoError(t, n.HotLeads(context.Background(), hotLeads(2)))

	assert.Equal(t, "🔥 2 Hot Leads Detected!", captured.Text)
	require.Len(t, captured.Attachments, 2)
	assert.Equal(t, "good", captured.Attachments[0].Color)
	assert.Equal(t, "lead@example.com", captured.Attachments[0].Fields[0].Value)
}

func TestHotLeads_CapsAttachments(t *testing.T) {
	var captured message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
	}))
	defer srv.Close()

	n, err := New(srv.URL)
	require.NoError(t, err)

	require.NoError(t, n.HotLeads(context.Background(), hotLeads(8)))
	assert.Len(t, captured.Attachments, maxLeadsPerAlert)
	assert.Contains(t, captured.Text, "8 Hot Leads")
	assert.Contains(t, captured.Text, "showing first 5")
}

func TestHotLeads_NoOpWhenDisabledOrEmpty(t *testing.T) {
	n, err := New("")
	require.NoError(t, err)
	assert.NoError(t, n.HotLeads(context.Background(), hotLeads(3)))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("webhook should not be called for empty list")
	}))
	defer srv.Close()
	n, err = New(srv.URL)
	require.NoError(t, err)
	assert.NoError(t, n.HotLeads(context.Background(), nil))
}

func TestHotLeads_SurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n, err := New(srv.URL)
	require.NoError(t, err)

	err = n.HotLeads(context.Background(), hotLeads(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
