package lovdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/jcdickinson/lovvelger/internal/law"
)

// Cache keeps scraped documents on disk as zstd-compressed JSON so the
// daemon can rebuild its tree without hitting Lovdata.
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(base string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(base)
	return filepath.Join(c.dir, name+".json.zst")
}

// Save compresses and writes doc, replacing any previous copy.
func (c *Cache) Save(doc *law.RawDocument) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating document cache dir: %w", err)
	}

	f, err := os.Create(c.path(doc.Base))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	if err := json.NewEncoder(w).Encode(doc); err != nil {
		w.Close()
		return fmt.Errorf("writing compressed document: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// Load reads a cached document.
func (c *Cache) Load(base string) (*law.RawDocument, error) {
	f, err := os.Open(c.path(base))
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	var doc law.RawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding cached document: %w", err)
	}
	return &doc, nil
}

// Has checks whether a cached document exists on disk.
func (c *Cache) Has(base string) bool {
	_, err := os.Stat(c.path(base))
	return err == nil
}

// Remove deletes the cached copy of base, if any.
func (c *Cache) Remove(base string) error {
	if err := os.Remove(c.path(base)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cached document: %w", err)
	}
	return nil
}

// Clear deletes every cached document.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("clearing document cache: %w", err)
	}
	return nil
}
