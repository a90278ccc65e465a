package webscraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
<title>AI in Education</title>
<meta name="author" content="Jane Doe">
<meta name="description" content="How AI changes learning apps">
<meta name="keywords" content="ai,education">
<meta property="og:site_name" content="EdTech Weekly">
<script>var tracking = true;</script>
</head>
<body>
<nav><a href="/home">Home</a></nav>
<main>
<h1>Adaptive learning</h1>
<p>Apps adjust exercises to each <a href="/students">student</a>.</p>


<ul><li>Personalised paths</li><li>Instant feedback</li></ul>
</main>
<footer>Copyright</footer>
</body>
</html>`

func newPageServer(t *testing.T, contentType string, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebscraperRun(t *testing.T) {
	srv := newPageServer(t, "text/html", testPage)
	tool := New()
	var output Output
	require.NoError(t, tool.Run(context.Background(), NewInput(srv.URL+"/article", true), &output))

	require.NotNil(t, output.Metadata)
	assert.Equal(t, "AI in Education", output.Metadata.Title)
	assert.Equal(t, "Jane Doe", output.Metadata.Author)
	assert.Equal(t, "How AI changes learning apps", output.Metadata.Description)
	assert.Equal(t, "ai,education", output.Metadata.Keywords)
	assert.Equal(t, "EdTech Weekly", output.Metadata.SiteName)
	assert.Equal(t, strings.TrimPrefix(srv.URL, "http://"), output.Metadata.Domain)

	assert.Contains(t, output.Content, "Adaptive learning")
	assert.Contains(t, output.Content, "Instant feedback")
	assert.Contains(t, output.Content, "/students")
	assert.NotContains(t, output.Content, "tracking")
	assert.NotContains(t, output.Content, "Copyright")
	assert.NotContains(t, output.Content, "\n\n\n")
	assert.False(t, output.Truncated)
	assert.True(t, strings.HasPrefix(output.String(), "# AI in Education"))
}

func TestWebscraperWithoutLinks(t *testing.T) {
	srv := newPageServer(t, "text/html", testPage)
	var output Output
	require.NoError(t, New().Run(context.Background(), NewInput(srv.URL, false), &output))
	assert.Contains(t, output.Content, "student")
	assert.NotContains(t, output.Content, "/students")
}

func TestWebscraperRejectsNonHTML(t *testing.T) {
	srv := newPageServer(t, "application/pdf", "%PDF-1.4\n%binary payload")
	var output Output
	err := New().Run(context.Background(), NewInput(srv.URL, false), &output)
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestWebscraperLimits(t *testing.T) {
	srv := newPageServer(t, "text/html", testPage)

	var output Output
	err := New(WithMaxContentLength(32)).Run(context.Background(), NewInput(srv.URL, false), &output)
	assert.ErrorIs(t, err, ErrContentTooLarge)

	output = Output{}
	require.NoError(t, New(WithMaxMarkdownLength(10)).Run(context.Background(), NewInput(srv.URL, false), &output))
	assert.True(t, output.Truncated)
	assert.Len(t, []rune(output.Content), 10)
}

func TestWebscraperStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	var output Output
	err := New().Run(context.Background(), NewInput(srv.URL, false), &output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
