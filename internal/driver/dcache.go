package driver

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"

	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
	"bridgeir/internal/irfile"
	"bridgeir/internal/source"
)

// bump when CachePayload changes
const diskCacheSchemaVersion uint16 = 1

// Digest identifies one cache entry.
type Digest [blake2b.Size256]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// CacheKey derives the entry key for a file's content. The diagnostic limit
// is part of the key because it changes what gets stored.
func CacheKey(content []byte, maxDiagnostics int) Digest {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // only fails for oversized keys
	}
	var hdr [12]byte
	binary.LittleEndian.PutUint16(hdr[0:], diskCacheSchemaVersion)
	binary.LittleEndian.PutUint16(hdr[2:], irfile.SchemaVersion)
	limit, _ := safecast.Conv[uint64](maxDiagnostics) // negative limits mean no cap
	binary.LittleEndian.PutUint64(hdr[4:], limit)
	_, _ = h.Write(hdr[:])
	_, _ = h.Write(content)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// CachePayload is what one input file resolves to. Spans are stored with
// the FileID of the run that produced them and are rebound on load.
type CachePayload struct {
	Schema      uint16
	Structs     []ir.ResolvedStruct
	Diagnostics []diag.Diagnostic
}

// DiskCache stores resolved files on disk keyed by content digest.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens the cache rooted at dir, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "files", key.String()+".mp")
}

// Put writes payload atomically.
func (c *DiskCache) Put(key Digest, payload *CachePayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the entry for key into out. A missing entry or one written by
// another schema is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *CachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}

// rebind points the spans of cached diagnostics at file.
func (p *CachePayload) rebind(file source.FileID) {
	for i := range p.Diagnostics {
		d := &p.Diagnostics[i]
		if !d.Primary.IsZero() {
			d.Primary.File = file
		}
		for j := range d.Notes {
			if !d.Notes[j].Span.IsZero() {
				d.Notes[j].Span.File = file
			}
		}
	}
}
