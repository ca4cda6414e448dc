// Package res loads images and other resources referenced by documents.
// Only local files and data: URIs are supported.
package res

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when a resource cannot be located.
var ErrNotFound = errors.New("res: resource not found")

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeImage is a raster image resource
	ResourceTypeImage
	// ResourceTypeSVG is a vector graphic
	ResourceTypeSVG
	// ResourceTypeFont is a font resource
	ResourceTypeFont
	// ResourceTypeCSS is a CSS resource
	ResourceTypeCSS
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader handles loading resources
type Loader struct {
	// BaseDir resolves relative paths.
	BaseDir string
	Logger  *slog.Logger

	// Resource cache
	cache     map[string]*Resource
	sizes     map[string]size
	cacheLock sync.RWMutex

	// Resource search paths
	searchPaths []string
}

// NewLoader creates a new resource loader resolving relative paths against
// baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		BaseDir: baseDir,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:   make(map[string]*Resource),
		sizes:   make(map[string]size),
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// SearchPaths returns the configured search directories.
func (l *Loader) SearchPaths() []string {
	return append([]string(nil), l.searchPaths...)
}

// Load loads a resource from a data: URI or a file path. Results are cached
// by src.
func (l *Loader) Load(src string) (*Resource, error) {
	l.cacheLock.RLock()
	if res, ok := l.cache[src]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var (
		res *Resource
		err error
	)
	switch {
	case strings.HasPrefix(src, "data:"):
		res, err = parseDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		err = fmt.Errorf("%w: remote resource %s", ErrNotFound, src)
	default:
		res, err = l.loadLocal(l.resolvePath(src))
	}
	if err != nil {
		l.Logger.Warn("resource load failed", "src", src, "err", err)
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[src] = res
	l.cacheLock.Unlock()
	return res, nil
}

// parseDataURL parses a data URL (RFC 2397) and returns a Resource.
// Examples:
//
//	data:image/png;base64,<base64>
//	data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	s := strings.TrimPrefix(u, "data:")
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("res: invalid data URL")
	}
	meta, dataPart := parts[0], parts[1]

	mime := "application/octet-stream"
	isBase64 := false
	// meta can be like: image/png;base64 or text/plain;charset=utf-8
	comps := strings.Split(meta, ";")
	if comps[0] != "" {
		mime = comps[0]
	}
	for _, c := range comps[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("res: invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(dataPart); err == nil {
		data = []byte(d)
	} else {
		data = []byte(dataPart)
	}

	r := &Resource{URL: u, Data: data, MimeType: mime}
	r.Type = determineResourceType(mime, "")
	return r, nil
}

// resolvePath resolves a path relative to the base directory
func (l *Loader) resolvePath(p string) string {
	p = strings.TrimPrefix(p, "file://")
	if filepath.IsAbs(p) || l.BaseDir == "" {
		return p
	}
	return filepath.Join(l.BaseDir, p)
}

// loadLocal loads a resource from a local file
func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l.loadFromSearchPaths(path)
		}
		return nil, err
	}
	return newFileResource(path, data), nil
}

// loadFromSearchPaths tries to load a resource from the search paths
func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	baseFilename := filepath.Base(filename)
	for _, searchPath := range l.searchPaths {
		path := filepath.Join(searchPath, baseFilename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return newFileResource(path, data), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

func newFileResource(path string, data []byte) *Resource {
	res := &Resource{URL: path, Data: data, MimeType: determineMimeType(path)}
	res.Type = determineResourceType(res.MimeType, path)
	return res
}

// determineMimeType determines the MIME type of a file
func determineMimeType(path string) string {
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
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".css":
		return "text/css"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// determineResourceType determines the type of a resource
func determineResourceType(mimeType, path string) ResourceType {
	switch {
	case mimeType == "image/svg+xml":
		return ResourceTypeSVG
	case strings.HasPrefix(mimeType, "image/"):
		return ResourceTypeImage
	case strings.HasPrefix(mimeType, "font/"):
		return ResourceTypeFont
	case mimeType == "text/css":
		return ResourceTypeCSS
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return ResourceTypeSVG
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff", ".tif", ".bmp":
		return ResourceTypeImage
	case ".ttf", ".otf":
		return ResourceTypeFont
	case ".css":
		return ResourceTypeCSS
	}
	return ResourceTypeOther
}

// LoadImage loads a raster or SVG image resource
func (l *Loader) LoadImage(src string) (*Resource, error) {
	res, err := l.Load(src)
	if err != nil {
		return nil, err
	}
	if res.Type != ResourceTypeImage && res.Type != ResourceTypeSVG {
		return nil, fmt.Errorf("res: not an image: %s", src)
	}
	return res, nil
}

// LoadCSS loads a CSS resource
func (l *Loader) LoadCSS(src string) (*Resource, error) {
	res, err := l.Load(src)
	if err != nil {
		return nil, err
	}
	if res.Type != ResourceTypeCSS {
		return nil, fmt.Errorf("res: not a stylesheet: %s", src)
	}
	return res, nil
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}
