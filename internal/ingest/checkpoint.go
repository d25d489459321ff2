package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
)

// checkpointData is the on-disk JSON structure.
type checkpointData struct {
	Digests map[string]string `json:"digests"`
}

// Checkpoint remembers the content digest of each file last analyzed, so
// unchanged files are skipped after a restart.
type Checkpoint struct {
	mu   sync.RWMutex
	path string
	data checkpointData
}

// NewCheckpoint creates or loads a checkpoint file at the given path. An
// empty path keeps the checkpoint in memory only.
func NewCheckpoint(path string) (*Checkpoint, error) {
	c := &Checkpoint{
		path: path,
		data: checkpointData{Digests: make(map[string]string)},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			_ = json.Unmarshal(raw, &c.data)
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if c.data.Digests == nil {
		c.data.Digests = make(map[string]string)
	}

	return c, nil
}

// Digest returns the hex SHA-256 of content.
func Digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Changed reports whether content differs from the last recorded digest.
func (c *Checkpoint) Changed(path, content string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Digests[path] != Digest(content)
}

// Set records content as the latest version of path.
func (c *Checkpoint) Set(path, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Digests[path] = Digest(content)
}

// Forget drops the digest for path.
func (c *Checkpoint) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data.Digests, path)
}

// Save writes the checkpoint to disk atomically.
func (c *Checkpoint) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temp file first, then rename for atomicity.
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
