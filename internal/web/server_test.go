package web

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, out io.Writer) *Server {
	t.Helper()
	srv, err := New(log.New(out))
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func TestAssetRoutes(t *testing.T) {
	srv := newTestServer(t, io.Discard)

	cases := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html;charset=UTF-8", "<title>Warmup Math Game</title>"},
		{"/index.html", "text/html;charset=UTF-8", `<script src="/script.js">`},
		{"/styles.css", "text/css;charset=UTF-8", ".challenge-input.incorrect"},
		{"/script.js", "application/javascript;charset=UTF-8", "epoch !== state.epoch"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, body := get(t, srv, tc.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, body, tc.contains)
		})
	}
}

func TestRootAndIndexServeSamePage(t *testing.T) {
	srv := newTestServer(t, io.Discard)
	_, root := get(t, srv, "/")
	_, index := get(t, srv, "/index.html")
	assert.Equal(t, root, index)
}

func TestPageControlsMatchScript(t *testing.T) {
	srv := newTestServer(t, io.Discard)
	_, page := get(t, srv, "/")
	_, script := get(t, srv, "/script.js")
	assert.Contains(t, page, `id="start-stop-btn"`)
	assert.Contains(t, script, `getElementById('start-stop-btn')`)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	srv := newTestServer(t, io.Discard)
	for _, path := range []string{"/missing", "/assets/index.html", "/script.js/extra"} {
		resp, body := get(t, srv, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "Not Found", body, path)
	}
}

func TestRequestsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	srv := newTestServer(t, &buf)
	get(t, srv, "/styles.css")

	line := buf.String()
	assert.True(t, strings.Contains(line, "path=/styles.css"), line)
	assert.True(t, strings.Contains(line, "status=200"), line)
}
