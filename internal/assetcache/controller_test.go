package assetcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	server   *httptest.Server
	requests map[string]int
	failPath string
}

func newUpstream(t *testing.T, assets map[string]string) *upstream {
	t.Helper()
	u := &upstream{requests: make(map[string]int)}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		u.requests[path]++
		if path == u.failPath {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, ok := assets[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func coreAssets() map[string]string {
	return map[string]string{
		"/index.html":      "<html>shell</html>",
		"/manifest.json":   `{"name":"maint"}`,
		"/assets/icon.png": "png-bytes",
	}
}

func coreManifest() []string {
	return []string{"index.html", "manifest.json", "assets/icon.png"}
}

func newController(t *testing.T, root, version string, u *upstream, manifest []string) *Controller {
	t.Helper()
	return New(Config{
		Root:     root,
		Version:  version,
		Upstream: u.server.URL,
		Manifest: manifest,
		Client:   u.server.Client(),
	})
}

func drainEvents(c *Controller) []Event {
	var out []Event
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestRegisterFreshInstallActivates(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())
	c := newController(t, root, "abc12345", u, coreManifest())

	require.NoError(t, c.Register(context.Background()))

	names, err := c.CacheNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"abc12345"}, names)

	st := c.CurrentStatus()
	assert.Equal(t, "abc12345", st.Active)
	assert.Empty(t, st.Waiting)

	events := drainEvents(c)
	assert.Equal(t, []Event{EventUpdateFound, EventControllerChange}, events)

	// Manifest assets serve from cache with the upstream gone.
	u.server.Close()
	resp := c.Fetch(context.Background(), "index.html")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.FromCache)
	assert.Equal(t, "<html>shell</html>", string(resp.Body))
}

func TestRegisterInstallIsAllOrNothing(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())
	u.failPath = "/manifest.json"
	c := newController(t, root, "abc12345", u, coreManifest())

	err := c.Register(context.Background())
	require.Error(t, err)

	names, cacheErr := c.CacheNames()
	require.NoError(t, cacheErr)
	assert.Empty(t, names, "a failed install leaves no generation behind")

	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "staging directories are cleaned up")
}

func TestRegisterSameVersionAdoptsWithoutReinstall(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())

	c1 := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c1.Register(context.Background()))
	installFetches := u.requests["/index.html"]

	c2 := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c2.Register(context.Background()))

	assert.Equal(t, installFetches, u.requests["/index.html"], "adoption does not refetch the manifest")
	events := drainEvents(c2)
	assert.NotContains(t, events, EventUpdateFound)
	assert.NotContains(t, events, EventControllerChange, "adoption never claims, so pages do not reload")
}

func TestRegisterNewVersionWaitsBehindOldGeneration(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())

	c1 := newController(t, root, "oldsha", u, coreManifest())
	require.NoError(t, c1.Register(context.Background()))
	drainEvents(c1)

	c2 := newController(t, root, "newsha", u, coreManifest())
	require.NoError(t, c2.Register(context.Background()))

	st := c2.CurrentStatus()
	assert.Equal(t, "oldsha", st.Active, "old generation keeps control until the page confirms")
	assert.Equal(t, "newsha", st.Waiting)

	events := drainEvents(c2)
	assert.Equal(t, []Event{EventUpdateFound, EventWaiting}, events)

	names, err := c2.CacheNames()
	require.NoError(t, err)
	assert.Len(t, names, 2, "both generations exist while one waits")
}

func TestSkipWaitingPurgesAndTakesControl(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())

	c1 := newController(t, root, "oldsha", u, coreManifest())
	require.NoError(t, c1.Register(context.Background()))

	c2 := newController(t, root, "newsha", u, coreManifest())
	require.NoError(t, c2.Register(context.Background()))
	drainEvents(c2)

	c2.HandleMessage(Message{Type: MessageSkipWaiting})

	st := c2.CurrentStatus()
	assert.Equal(t, "newsha", st.Active)
	assert.Empty(t, st.Waiting)

	events := drainEvents(c2)
	assert.Equal(t, []Event{EventControllerChange}, events, "cutover fires exactly one controller change")

	names, err := c2.CacheNames()
	require.NoError(t, err)
	assert.Empty(t, names, "skip waiting deletes every generation unconditionally")

	// The fresh controller refills its cache from the network on demand.
	resp := c2.Fetch(context.Background(), "index.html")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.False(t, resp.FromCache)
	resp = c2.Fetch(context.Background(), "index.html")
	assert.True(t, resp.FromCache)
}

func TestSkipWaitingWithoutWaitingGeneration(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())
	c := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c.Register(context.Background()))
	drainEvents(c)

	c.HandleMessage(Message{Type: MessageSkipWaiting})

	events := drainEvents(c)
	assert.Empty(t, events, "no cutover without a waiting generation")
	assert.Equal(t, "abc12345", c.CurrentStatus().Active)
}

func TestUnknownMessageIsIgnored(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())
	c := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c.Register(context.Background()))

	c.HandleMessage(Message{Type: "PING"})

	names, err := c.CacheNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"abc12345"}, names)
}

func TestActivateCollectsStaleGenerations(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "stalesha", "body"), 0o755))

	u := newUpstream(t, coreAssets())
	c := newController(t, root, "newsha", u, coreManifest())
	require.NoError(t, c.Register(context.Background()))
	drainEvents(c)
	c.HandleMessage(Message{Type: MessageSkipWaiting})

	names, err := c.CacheNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "stalesha")
}

func TestFetchCachesRuntimeMisses(t *testing.T) {
	root := t.TempDir()
	assets := coreAssets()
	assets["/extra.css"] = "body{}"
	u := newUpstream(t, assets)
	c := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c.Register(context.Background()))

	resp := c.Fetch(context.Background(), "extra.css")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.False(t, resp.FromCache)

	u.server.Close()
	resp = c.Fetch(context.Background(), "extra.css")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.FromCache)
	assert.Equal(t, "body{}", string(resp.Body))
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())
	c := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c.Register(context.Background()))

	resp := c.Fetch(context.Background(), "missing.js")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, 1, u.requests["/missing.js"])

	resp = c.Fetch(context.Background(), "missing.js")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, 2, u.requests["/missing.js"], "non-2xx responses are never cached")
}

func TestFetchOfflineSynthesizesResponse(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())
	c := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c.Register(context.Background()))

	u.server.Close()
	resp := c.Fetch(context.Background(), "never-cached.js")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, "offline", string(resp.Body))
	assert.False(t, resp.FromCache)
}

func TestServeHTTP(t *testing.T) {
	root := t.TempDir()
	u := newUpstream(t, coreAssets())
	c := newController(t, root, "abc12345", u, coreManifest())
	require.NoError(t, c.Register(context.Background()))

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/index.html", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDefaultVersionFallback(t *testing.T) {
	u := newUpstream(t, coreAssets())
	c := New(Config{Root: t.TempDir(), Upstream: u.server.URL, Manifest: nil, Client: u.server.Client()})
	require.NoError(t, c.Register(context.Background()))
	assert.Equal(t, DefaultVersion, c.CurrentStatus().Active)
}
