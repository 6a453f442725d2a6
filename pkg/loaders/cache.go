package loaders

import (
	"path/filepath"
	"sync"
)

// Cache loads mesh and image files relative to a base directory and keeps them so a
// file referenced by several shapes or textures is read once. It is safe for concurrent use.
type Cache struct {
	baseDir string

	mu     sync.RWMutex
	meshes map[string]*MeshData
	images map[string]*ImageData
}

// NewCache creates a cache resolving relative paths against baseDir
func NewCache(baseDir string) *Cache {
	return &Cache{
		baseDir: baseDir,
		meshes:  make(map[string]*MeshData),
		images:  make(map[string]*ImageData),
	}
}

// Mesh returns the mesh stored at path
func (c *Cache) Mesh(path string) (*MeshData, error) {
	return load(c, c.meshes, c.resolve(path), LoadMesh)
}

// Image returns the image stored at path
func (c *Cache) Image(path string) (*ImageData, error) {
	return load(c, c.images, c.resolve(path), LoadImage)
}

func (c *Cache) resolve(path string) string {
	if filepath.IsAbs(path) || c.baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(c.baseDir, path)
}

func load[T any](c *Cache, items map[string]*T, path string, loadFn func(string) (*T, error)) (*T, error) {
	// Fast path: read lock
	c.mu.RLock()
	item, ok := items[path]
	c.mu.RUnlock()
	if ok {
		return item, nil
	}

	// Slow path: load from disk; failures are not cached
	item, err := loadFn(path)
	if err != nil {
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := items[path]; ok {
		return existing, nil
	}
	items[path] = item
	return item, nil
}
