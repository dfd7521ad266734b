// Package assets handles panorama and audio asset loading and caching.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/panorama/internal/engine/render"
)

// ErrNotFound is returned when no root contains the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager loads files from a stack of roots and caches decoded textures.
type Manager struct {
	roots    []fs.FS
	cache    *Cache
	textures map[string]*render.Texture
	maxSize  int
	log      *zap.Logger
	mu       sync.RWMutex

	texHits   int
	texMisses int
}

// Stats reports how well the caches are doing.
type Stats struct {
	Textures      int // decoded textures held
	TextureHits   int
	TextureMisses int
	FileHits      int
	FileMisses    int
}

// NewManager creates a new asset manager. Textures larger than maxTextureSize
// on either side are scaled down; zero disables scaling.
func NewManager(maxTextureSize int, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache:    NewCache(),
		textures: make(map[string]*render.Texture),
		maxSize:  maxTextureSize,
		log:      log,
	}
}

// AddRoot adds a filesystem to search.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(root fs.FS) {
	m.mu.Lock()
	m.roots = append(m.roots, root)
	m.mu.Unlock()
}

// AddDir adds a directory on disk as a root.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("asset root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset root %s: not a directory", dir)
	}
	m.AddRoot(os.DirFS(dir))
	m.log.Debug("asset root added", zap.String("dir", dir))
	return nil
}

// Load reads a file from the roots.
func (m *Manager) Load(name string) ([]byte, error) {
	name = path.Clean(name)
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	roots := m.roots
	m.mu.RUnlock()

	for i := len(roots) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(roots[i], name)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// LoadTexture loads and decodes a panorama image. Decoded textures are cached
// by path, so revisiting a node does not decode again.
func (m *Manager) LoadTexture(name string) (*render.Texture, error) {
	name = path.Clean(name)

	m.mu.Lock()
	tex, ok := m.textures[name]
	if ok {
		m.texHits++
	} else {
		m.texMisses++
	}
	m.mu.Unlock()
	if ok {
		return tex, nil
	}

	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	img, format, err := DecodeRGBA(data, m.maxSize)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	// Texture bytes are no longer needed once decoded.
	m.cache.Delete(name)

	tex = &render.Texture{Source: name, Image: img}
	m.mu.Lock()
	m.textures[name] = tex
	m.mu.Unlock()

	w, h := tex.Size()
	m.log.Debug("texture decoded",
		zap.String("path", name),
		zap.String("format", format),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return tex, nil
}

// Preload decodes the given textures in parallel. Failures are logged and
// counted but do not stop the others; they surface again when the texture is
// actually needed.
func (m *Manager) Preload(ctx context.Context, names []string, workers int) (failed int) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	var mu sync.Mutex
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := m.LoadTexture(name); err != nil {
				m.log.Warn("preload failed", zap.String("path", name), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.log.Warn("preload interrupted", zap.Error(err))
	}
	return failed
}

// Stats returns a snapshot of cache usage.
func (m *Manager) Stats() Stats {
	hits, misses := m.cache.Stats()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Textures:      len(m.textures),
		TextureHits:   m.texHits,
		TextureMisses: m.texMisses,
		FileHits:      hits,
		FileMisses:    misses,
	}
}

// Close drops every cached asset.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = nil
	m.textures = make(map[string]*render.Texture)
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
