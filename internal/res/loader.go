// Package res loads score files and logo images from local paths, http(s)
// URLs and data URLs.
package res

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gompdf/scorepdf/internal/failure"
)

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeImage is a raster or SVG image
	ResourceTypeImage
	// ResourceTypeData is a JSON or YAML score document
	ResourceTypeData
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeData:
		return "data"
	case ResourceTypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader handles loading resources
type Loader struct {
	// BaseURL resolves relative references; a file path or an http(s) URL.
	BaseURL string

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	searchPaths []string

	client *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{},
	}
}

// SetHTTPClient replaces the client used for remote resources.
func (l *Loader) SetHTTPClient(c *http.Client) {
	l.client = c
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL, data URL or file path. Results are cached
// by the reference as given.
func (l *Loader) Load(ctx context.Context, ref string) (*Resource, error) {
	l.cacheLock.RLock()
	if r, ok := l.cache[ref]; ok {
		l.cacheLock.RUnlock()
		return r, nil
	}
	l.cacheLock.RUnlock()

	r, err := l.load(ctx, ref)
	if err != nil {
		return nil, failure.IO("load "+ref, err)
	}

	l.cacheLock.Lock()
	l.cache[ref] = r
	l.cacheLock.Unlock()
	return r, nil
}

func (l *Loader) load(ctx context.Context, ref string) (*Resource, error) {
	if strings.HasPrefix(ref, "data:") {
		return parseDataURL(ref)
	}
	resolved, err := l.resolveURL(ref)
	if err != nil {
		return nil, err
	}
	if isRemote(resolved) {
		return l.loadRemote(ctx, resolved)
	}
	return l.loadLocal(resolved)
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// parseDataURL parses an RFC 2397 data URL, for example
// data:image/png;base64,<payload> or data:application/json,%7B%7D
func parseDataURL(u string) (*Resource, error) {
	s := strings.TrimPrefix(u, "data:")
	meta, payload, ok := strings.Cut(s, ",")
	if !ok {
		return nil, errors.New("invalid data URL")
	}

	mime := "application/octet-stream"
	isBase64 := false
	if meta != "" {
		comps := strings.Split(meta, ";")
		if comps[0] != "" {
			mime = comps[0]
		}
		for _, c := range comps[1:] {
			if strings.EqualFold(strings.TrimSpace(c), "base64") {
				isBase64 = true
			}
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{URL: u, Data: data, MimeType: mime, Type: determineResourceType(mime, "")}, nil
}

// resolveURL resolves a reference relative to the base URL
func (l *Loader) resolveURL(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) || l.BaseURL == "" {
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

func (l *Loader) loadRemote(ctx context.Context, u string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" || mime == "application/octet-stream" || mime == "text/plain" {
		if byExt := determineMimeType(u); byExt != "application/octet-stream" {
			mime = byExt
		}
	}
	return &Resource{URL: u, Data: data, MimeType: mime, Type: determineResourceType(mime, u)}, nil
}

func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && len(l.searchPaths) > 0 {
			return l.loadFromSearchPaths(path)
		}
		return nil, err
	}
	return newLocal(path, data), nil
}

func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	base := filepath.Base(filename)
	for _, dir := range l.searchPaths {
		path := filepath.Join(dir, base)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return newLocal(path, data), nil
	}
	return nil, fmt.Errorf("resource not found: %s", filename)
}

func newLocal(path string, data []byte) *Resource {
	mime := determineMimeType(path)
	return &Resource{URL: path, Data: data, MimeType: mime, Type: determineResourceType(mime, path)}
}

// determineMimeType guesses a MIME type from the file extension
func determineMimeType(path string) string {
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}

func determineResourceType(mimeType, path string) ResourceType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return ResourceTypeImage
	case mimeType == "application/json", strings.HasSuffix(mimeType, "yaml"):
		return ResourceTypeData
	}
	if path == "" {
		return ResourceTypeOther
	}
	return determineResourceType(determineMimeType(path), "")
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ctx context.Context, ref string) (*Resource, error) {
	r, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Type != ResourceTypeImage {
		return nil, failure.Validationf("load image", "resource is not an image: %s", ref)
	}
	return r, nil
}

// LoadData loads a score document. Unknown extensions are accepted; the
// parser decides.
func (l *Loader) LoadData(ctx context.Context, ref string) (*Resource, error) {
	r, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Type == ResourceTypeImage {
		return nil, failure.Validationf("load data", "resource is an image, not a score document: %s", ref)
	}
	return r, nil
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}
