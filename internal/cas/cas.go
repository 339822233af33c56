// Package cas stores raw Lovdata HTML snapshots by content hash, so a
// re-fetch of an unchanged document costs no extra disk and a parse can
// be replayed without network access.
package cas

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jcdickinson/lovvelger/internal/config"
	"github.com/klauspost/compress/zstd"
)

// Dir returns the snapshot directory path.
func Dir() string {
	return config.CASDir()
}

// Hash returns the hex SHA-256 of a snapshot.
func Hash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// path returns the sharded file path for a hash: cas/<first2>/<rest>.html.zst
func path(hash string) string {
	return filepath.Join(Dir(), hash[:2], hash[2:]+".html.zst")
}

// Has reports whether a snapshot with this hash is stored.
func Has(hash string) bool {
	if len(hash) < 3 {
		return false
	}
	_, err := os.Stat(path(hash))
	return err == nil
}

// Write stores a snapshot, returning its hash. Writing content that is
// already present is a no-op.
func Write(content []byte) (string, error) {
	hash := Hash(content)

	p := path(hash)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return "", fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing zstd writer: %w", err)
	}

	// Write to a temp file and rename so a concurrent reader never sees a
	// partial snapshot.
	tmp, err := os.CreateTemp(filepath.Dir(p), ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating snapshot file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("renaming snapshot: %w", err)
	}

	return hash, nil
}

// Read retrieves a snapshot by hash.
func Read(hash string) ([]byte, error) {
	if len(hash) < 3 {
		return nil, fmt.Errorf("invalid snapshot hash %q", hash)
	}
	f, err := os.Open(path(hash))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", hash, err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot %s: %w", hash, err)
	}
	return data, nil
}

// Clear removes every stored snapshot.
func Clear() error {
	if err := os.RemoveAll(Dir()); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}
	return nil
}
