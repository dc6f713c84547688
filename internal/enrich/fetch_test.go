package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>ConsuTech</title><style>body{margin:0}</style></head>
<body>
<nav>Home About Contact</nav>
<main>
<h1>ConsuTech Solutions</h1>
<p>We help consulting firms automate their reporting workflows so partners spend time with clients, not spreadsheets.</p>
</main>
<footer>Copyright 2026</footer>
<script>console.log("hi")</script>
</body>
</html>`

func TestSnippet_ExtractsMainContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	snippet := f.Snippet(context.Background(), srv.URL)

	assert.Contains(t, snippet, "automate their reporting workflows")
	assert.NotContains(t, snippet, "Copyright")
	assert.NotContains(t, snippet, "console.log")
	assert.NotContains(t, snippet, "Home About Contact")
}

func TestSnippet_TruncatesLongContent(t *testing.T) {
	long := "<html><body><main><p>" + strings.Repeat("automation insights ", 100) + "</p></main></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(long))
	}))
	defer srv.Close()

	f := NewFetcher(&Options{MaxSnippetLen: 100})
	snippet := f.Snippet(context.Background(), srv.URL)

	assert.LessOrEqual(t, len(snippet), 104)
	assert.True(t, strings.HasSuffix(snippet, "..."))
}

func TestSnippet_DegradesToEmptyOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	assert.Empty(t, f.Snippet(context.Background(), srv.URL))
	assert.Empty(t, f.Snippet(context.Background(), ""))
	assert.Empty(t, f.Snippet(context.Background(), "http://127.0.0.1:1"))
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	text, err := ExtractMainText("<html><body><p>Just a body paragraph.</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "Just a body paragraph.", text)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://consultech.com", normalizeURL("consultech.com"))
	assert.Equal(t, "http://consultech.com", normalizeURL("http://consultech.com"))
	assert.Equal(t, "", normalizeURL("   "))
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("tiny"))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}
