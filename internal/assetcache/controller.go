// Package assetcache manages a versioned cache of static assets for the
// installable-app shell: cache-first serving with network fill, an offline
// fallback response, and a safe cutover protocol from an old cache
// generation to a new one on deploy.
package assetcache

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event is one lifecycle notification emitted to subscribed clients.
type Event string

const (
	// EventUpdateFound fires when a new generation starts installing.
	EventUpdateFound Event = "updatefound"
	// EventWaiting fires when a new generation is installed but an older
	// one is still in control.
	EventWaiting Event = "waiting"
	// EventControllerChange fires exactly once per cutover, when a
	// generation takes control. Pages reload on it.
	EventControllerChange Event = "controllerchange"
)

// Message is the inbound half of the page protocol.
type Message struct {
	Type string `json:"type"`
}

// MessageSkipWaiting asks the waiting generation to take over immediately.
const MessageSkipWaiting = "SKIP_WAITING"

// DefaultVersion is used when no build version token is set.
const DefaultVersion = "dev"

const stagingPrefix = ".staging-"

// Config configures the cache controller.
type Config struct {
	// Root is the directory holding cache generations.
	Root string
	// Version is the build version token naming the current generation.
	// Empty means DefaultVersion.
	Version string
	// Upstream is the origin base URL assets are fetched from.
	Upstream string
	// Manifest lists the core asset paths populated at install time.
	Manifest []string
	// Client is the HTTP client used for asset fetches. Defaults to a
	// client with a 30s timeout.
	Client *http.Client
}

// Response is the outcome of a Fetch. Fetch never fails: offline misses
// synthesize a non-OK response instead.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	FromCache   bool
}

// Controller owns the cache generations and implements the fetch policy
// and the page message protocol.
type Controller struct {
	root     string
	version  string
	upstream string
	manifest []string
	client   *http.Client

	mu      sync.Mutex
	active  *generation
	waiting *generation

	events chan Event
}

// New creates a controller. Register must be called before serving.
func New(cfg Config) *Controller {
	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Controller{
		root:     cfg.Root,
		version:  version,
		upstream: strings.TrimRight(cfg.Upstream, "/"),
		manifest: cfg.Manifest,
		client:   client,
		events:   make(chan Event, 8),
	}
}

// Events is the outbound half of the page protocol.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		log.Printf("asset cache: dropping event %s, no listener", ev)
	}
}

// Register installs and/or activates the generation for the configured
// version, mirroring service worker registration: a version already on disk
// is adopted and activated; a new version is installed all-or-nothing and
// either activated immediately or parked as waiting while an older
// generation stays in control.
func (c *Controller) Register(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return fmt.Errorf("create cache root: %w", err)
	}

	existing, err := c.generationVersions()
	if err != nil {
		return err
	}

	gen := newGeneration(c.root, c.version)
	for _, v := range existing {
		if v == c.version {
			// Same build as last run: adopt and re-activate so stray
			// generations are collected.
			gen.state = StateActive
			c.active = gen
			c.activateLocked(gen, false)
			return nil
		}
	}

	c.emit(EventUpdateFound)
	if err := c.install(ctx, gen); err != nil {
		gen.state = StateRedundant
		return err
	}
	gen.state = StateInstalled

	if len(existing) > 0 {
		// An older generation keeps serving until the page confirms the
		// update (skip-waiting message).
		c.active = &generation{
			version: existing[0],
			dir:     filepath.Join(c.root, existing[0]),
			state:   StateActive,
		}
		c.waiting = gen
		c.emit(EventWaiting)
		return nil
	}

	c.active = gen
	c.activateLocked(gen, true)
	return nil
}

// install populates a staging directory with every manifest asset and
// renames it into place. Any failed fetch fails the whole install and
// leaves nothing behind.
func (c *Controller) install(ctx context.Context, gen *generation) error {
	staging := &generation{
		version: gen.version,
		dir:     filepath.Join(c.root, stagingPrefix+gen.version),
		state:   StateInstalling,
	}
	defer os.RemoveAll(staging.dir)

	if err := os.MkdirAll(staging.dir, 0o755); err != nil {
		return fmt.Errorf("install: create staging dir: %w", err)
	}
	for _, assetPath := range c.manifest {
		status, contentType, body, err := c.fetchUpstream(ctx, assetPath)
		if err != nil {
			return fmt.Errorf("install: fetch %q: %w", assetPath, err)
		}
		if status < 200 || status >= 300 {
			return fmt.Errorf("install: fetch %q: unexpected status %d", assetPath, status)
		}
		if err := staging.write(assetPath, body, contentType); err != nil {
			return fmt.Errorf("install: %w", err)
		}
	}

	if err := os.RemoveAll(gen.dir); err != nil {
		return fmt.Errorf("install: clear previous generation: %w", err)
	}
	if err := os.Rename(staging.dir, gen.dir); err != nil {
		return fmt.Errorf("install: commit generation: %w", err)
	}
	log.Printf("asset cache: installed generation %s (%d assets)", gen.version, len(c.manifest))
	return nil
}

// activateLocked garbage-collects every generation that is not gen and puts
// gen in control, claiming clients when claim is set.
func (c *Controller) activateLocked(gen *generation, claim bool) {
	gen.state = StateActivating
	versions, err := c.generationVersions()
	if err != nil {
		log.Printf("asset cache: activate: %v", err)
	}
	for _, v := range versions {
		if v != gen.version {
			if err := os.RemoveAll(filepath.Join(c.root, v)); err != nil {
				log.Printf("asset cache: failed to delete generation %s: %v", v, err)
			}
		}
	}
	gen.state = StateActive
	if claim {
		c.emit(EventControllerChange)
	}
	log.Printf("asset cache: generation %s active", gen.version)
}

// HandleMessage processes one inbound page message. A skip-waiting message
// deletes all cache generations unconditionally and forces the waiting
// generation into control, so no stale asset is served past user
// confirmation. Unknown message types are ignored.
func (c *Controller) HandleMessage(msg Message) {
	if msg.Type != MessageSkipWaiting {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	versions, err := c.generationVersions()
	if err != nil {
		log.Printf("asset cache: skip waiting: %v", err)
	}
	for _, v := range versions {
		if err := os.RemoveAll(filepath.Join(c.root, v)); err != nil {
			log.Printf("asset cache: failed to delete generation %s: %v", v, err)
		}
	}

	if c.waiting == nil {
		return
	}
	gen := c.waiting
	c.waiting = nil
	if c.active != nil {
		c.active.state = StateRedundant
	}
	c.active = gen
	gen.state = StateActive
	c.emit(EventControllerChange)
	log.Printf("asset cache: generation %s took control", gen.version)
}

// Fetch applies the runtime cache policy for one same-origin GET: serve the
// cached entry verbatim when present; otherwise fetch over the network and
// clone a successful response into the current generation; on network
// failure fall back to the cache again, else synthesize an offline
// response. Fetch never propagates an error.
func (c *Controller) Fetch(ctx context.Context, assetPath string) Response {
	gen := c.activeGeneration()

	if gen != nil {
		if body, contentType, ok := gen.read(assetPath); ok {
			return Response{Status: http.StatusOK, ContentType: contentType, Body: body, FromCache: true}
		}
	}

	status, contentType, body, err := c.fetchUpstream(ctx, assetPath)
	if err != nil {
		if gen != nil {
			if body, contentType, ok := gen.read(assetPath); ok {
				return Response{Status: http.StatusOK, ContentType: contentType, Body: body, FromCache: true}
			}
		}
		return Response{
			Status:      http.StatusServiceUnavailable,
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte("offline"),
		}
	}

	if gen != nil && status >= 200 && status < 300 {
		if err := gen.write(assetPath, body, contentType); err != nil {
			log.Printf("asset cache: failed to cache %q: %v", assetPath, err)
		}
	}
	return Response{Status: status, ContentType: contentType, Body: body}
}

// ServeHTTP serves assets under the controller's policy. Only GET requests
// are intercepted; anything else is answered 405 rather than cached.
func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	assetPath := strings.TrimPrefix(r.URL.Path, "/")
	resp := c.Fetch(r.Context(), assetPath)
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// CacheNames lists the versions of the generations currently on disk.
func (c *Controller) CacheNames() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationVersions()
}

// Status describes the controller for diagnostics.
type Status struct {
	Active  string `json:"active"`
	Waiting string `json:"waiting,omitempty"`
}

// CurrentStatus reports the active and waiting generation versions.
func (c *Controller) CurrentStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{}
	if c.active != nil {
		st.Active = c.active.version
	}
	if c.waiting != nil {
		st.Waiting = c.waiting.version
	}
	return st
}

func (c *Controller) activeGeneration() *generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// generationVersions lists generation directories, skipping staging dirs.
func (c *Controller) generationVersions() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list cache generations: %w", err)
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), stagingPrefix) {
			versions = append(versions, entry.Name())
		}
	}
	return versions, nil
}

func (c *Controller) fetchUpstream(ctx context.Context, assetPath string) (int, string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.upstream+"/"+assetPath, nil)
	if err != nil {
		return 0, "", nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, err
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}
