// Package archive keeps a persistent index of rendered cards grouped by
// archive label
package archive

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thereceipt/titlecard-engine/internal/batch"
)

// Index maps rendered outputs to stable archive entries
type Index struct {
	filePath string
	data     map[string]*Entry
	logger   *slog.Logger
	mu       sync.RWMutex
}

// Entry stores persistent information about a rendered card
type Entry struct {
	ID          string    `json:"id"`
	IdentityKey string    `json:"identity_key"`
	Variant     string    `json:"variant"`
	Group       string    `json:"group"`
	Output      string    `json:"output"`
	CardID      string    `json:"card_id,omitempty"`
	Renders     int       `json:"renders"`
	RenderedAt  time.Time `json:"rendered_at"`
}

// Open loads the index at filePath. A missing file starts an empty index.
func Open(filePath string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	idx := &Index{
		filePath: filePath,
		data:     make(map[string]*Entry),
		logger:   logger,
	}

	if err := idx.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load archive: %w", err)
		}
	}

	return idx, nil
}

// Record stores a rendered card and returns its archive ID. Re-rendering the
// same output keeps the ID and refreshes the entry.
func (x *Index) Record(res batch.Result) string {
	x.mu.Lock()
	defer x.mu.Unlock()

	key := identityKey(res.Variant, res.Output)
	entry, exists := x.data[key]
	if !exists {
		entry = &Entry{
			ID:          uuid.New().String(),
			IdentityKey: key,
		}
		x.data[key] = entry
	}
	entry.Variant = res.Variant
	entry.Group = res.Group
	entry.Output = res.Output
	entry.CardID = res.ID
	entry.Renders++
	entry.RenderedAt = time.Now().UTC()

	if err := x.save(); err != nil {
		x.logger.Warn("failed to save archive", "path", x.filePath, "error", err)
	}

	return entry.ID
}

// Get returns a copy of the entry with the given archive ID
func (x *Index) Get(id string) *Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, entry := range x.data {
		if entry.ID == id {
			entryCopy := *entry
			return &entryCopy
		}
	}
	return nil
}

// Remove deletes an entry by archive ID
func (x *Index) Remove(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	for key, entry := range x.data {
		if entry.ID == id {
			delete(x.data, key)
			if err := x.save(); err != nil {
				x.logger.Warn("failed to save archive", "path", x.filePath, "error", err)
			}
			return true
		}
	}
	return false
}

// All returns copies of every entry ordered by group, then output
func (x *Index) All() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]Entry, 0, len(x.data))
	for _, entry := range x.data {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Output < out[j].Output
	})
	return out
}

// Groups counts entries per archive group
func (x *Index) Groups() map[string]int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	groups := make(map[string]int)
	for _, entry := range x.data {
		groups[entry.Group]++
	}
	return groups
}

// OnStart implements batch.Observer
func (x *Index) OnStart(total int) {}

// OnCardDone records rendered cards
func (x *Index) OnCardDone(done, total int, res batch.Result) {
	if res.Status == batch.StatusRendered {
		x.Record(res)
	}
}

func (x *Index) load() error {
	data, err := os.ReadFile(x.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &x.data)
}

func (x *Index) save() error {
	data, err := json.MarshalIndent(x.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(x.filePath, data, 0644)
}

// identityKey derives a stable key for a card from its variant and output
func identityKey(variant, output string) string {
	if output != "" {
		if abs, err := filepath.Abs(output); err == nil {
			output = abs
		}
	}
	hash := md5.Sum([]byte(variant + "\x00" + output))
	return fmt.Sprintf("card:%x", hash)
}
