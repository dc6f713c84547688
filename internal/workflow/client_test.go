package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdery/coldreach/internal/icebreaker"
	"github.com/spdery/coldreach/internal/leads"
	"github.com/spdery/coldreach/internal/worker"
)

func testLead() leads.Lead {
	return leads.Lead{
		FirstName: "Sarah",
		LastName:  "Johnson",
		Email:     "sarah@techstart.com",
		Company:   "TechStart Solutions",
		Industry:  "SaaS",
		Website:   "https://techstart.com",
		Title:     "CEO",
	}
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("not-a-url", "")
	assert.Error(t, err)

	_, err = New("ftp://example.com/hook", "")
	assert.Error(t, err)

	_, err = New("https://example.com/webhook/generate-icebreaker", "")
	assert.NoError(t, err)
}

func TestGenerate_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"icebreaker": "Saw the new TechStart onboarding flow", "status": "success"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "Love your approach to {specific_observation}")
	require.NoError(t, err)
	assert.Equal(t, icebreaker.ProviderWorkflow, c.Name())

	text, err := c.Generate(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, "Saw the new TechStart onboarding flow", text)

	assert.Equal(t, "TechStart Solutions", got["company_name"])
	assert.Equal(t, "SaaS", got["industry"])
	assert.Equal(t, "Love your approach to {specific_observation}", got["template"])
}

func TestGenerate_RateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), testLead())
	require.Error(t, err)
	assert.True(t, worker.IsTransient(err))
}

func TestGenerate_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), testLead())
	require.Error(t, err)
	assert.True(t, worker.IsTransient(err))
}

func TestGenerate_AuthFailureIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), testLead())
	require.Error(t, err)
	assert.False(t, worker.IsTransient(err))
}

func TestGenerate_SchemaInvalidResponseIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success"}`)) // missing icebreaker
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), testLead())
	require.Error(t, err)
	assert.False(t, worker.IsTransient(err))
	assert.Contains(t, err.Error(), "schema validation")
}

func TestGenerate_WorkflowReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"icebreaker": "x", "status": "error", "error": "model overloaded"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), testLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGenerate_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse connections

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), testLead())
	require.Error(t, err)
	assert.True(t, worker.IsTransient(err))
}
