// Package res loads the resources a document refers to: data URLs, local
// files and remote URLs
package res

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// maxRemoteSize caps the body read from remote resources
const maxRemoteSize = 32 << 20

// ResourceType represents the type of resource
type ResourceType int

const (
	ResourceTypeUnknown ResourceType = iota
	ResourceTypeImage
	ResourceTypeFont
	ResourceTypeCSS
	ResourceTypeOther
)

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

func newResource(u, mimeType string, data []byte) *Resource {
	return &Resource{URL: u, Data: data, MimeType: mimeType, Type: classify(mimeType, u)}
}

// Loader resolves and caches resources. It is safe for concurrent use
type Loader struct {
	// BaseURL is a URL or file path relative references resolve against
	BaseURL string

	// DataOnly refuses everything except data URLs
	DataOnly bool

	mu          sync.RWMutex
	cache       map[string]*Resource
	searchPaths []string
	client      *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewDataLoader creates a loader that only accepts data URLs
func NewDataLoader() *Loader {
	l := NewLoader("")
	l.DataOnly = true
	return l
}

// AddSearchPath adds a directory tried, by base name, when a local file is missing
func (l *Loader) AddSearchPath(path string) {
	l.mu.Lock()
	l.searchPaths = append(l.searchPaths, path)
	l.mu.Unlock()
}

// Load loads a resource from a data URL, URL or file path
func (l *Loader) Load(ref string) (*Resource, error) {
	l.mu.RLock()
	cached, ok := l.cache[ref]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r, err := l.fetch(ref)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[ref] = r
	l.mu.Unlock()
	return r, nil
}

func (l *Loader) fetch(ref string) (*Resource, error) {
	if strings.HasPrefix(ref, "data:") {
		return parseDataURL(ref)
	}
	if l.DataOnly {
		return nil, fmt.Errorf("only data URLs are accepted, got %q", shorten(ref))
	}

	resolved, err := l.resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", shorten(ref), err)
	}
	if isRemote(resolved) {
		return l.loadRemote(resolved)
	}
	return l.loadLocal(resolved)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// resolve makes ref absolute against BaseURL
func (l *Loader) resolve(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) {
		return ref, nil
	}
	if !isRemote(l.BaseURL) {
		return filepath.Join(filepath.Dir(l.BaseURL), ref), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (l *Loader) loadRemote(u string) (*Resource, error) {
	resp, err := l.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", u, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		mimeType = mimeFromPath(u)
	}
	return newResource(u, mimeType, data), nil
}

func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return newResource(path, mimeFromPath(path), data), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	l.mu.RLock()
	paths := append([]string(nil), l.searchPaths...)
	l.mu.RUnlock()

	name := filepath.Base(path)
	for _, dir := range paths {
		candidate := filepath.Join(dir, name)
		if data, err := os.ReadFile(candidate); err == nil {
			return newResource(candidate, mimeFromPath(candidate), data), nil
		}
	}
	return nil, fmt.Errorf("resource not found: %s", path)
}

// shorten keeps long data URLs out of error messages
func shorten(s string) string {
	if len(s) <= 48 {
		return s
	}
	return s[:48] + "..."
}
