package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// LedgerName is the default file name of a conversion ledger.
const LedgerName = ".odf-ledger.json"

// LedgerEntry records the last successful conversion of one source file.
type LedgerEntry struct {
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
	Formats      []string  `json:"formats"`
	Outputs      []string  `json:"outputs"`
}

// ledgerFile is the persisted ledger state.
type ledgerFile struct {
	Version int                     `json:"version"`
	Entries map[string]*LedgerEntry `json:"entries"` // Key is the cleaned source path
}

// Ledger remembers which sources were converted, so unchanged files can be skipped.
type Ledger struct {
	Path string

	mu    sync.RWMutex
	data  ledgerFile
	dirty bool
}

// NewLedger creates an empty ledger persisted at path.
func NewLedger(path string) *Ledger {
	return &Ledger{
		Path: path,
		data: ledgerFile{Version: 1, Entries: make(map[string]*LedgerEntry)},
	}
}

// Load reads the ledger from disk. A missing or corrupted file yields an empty ledger.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	var f ledgerFile
	if err := json.Unmarshal(data, &f); err != nil || f.Entries == nil {
		l.data.Entries = make(map[string]*LedgerEntry)
		return nil
	}
	l.data = f
	l.dirty = false
	return nil
}

// Save persists the ledger atomically when it changed since the last Load or Save.
func (l *Ledger) Save() error {
	l.mu.RLock()
	if !l.dirty {
		l.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(l.data, "", "  ")
	l.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return err
	}
	if err := WriteFileAtomic(l.Path, data, 0644); err != nil {
		return err
	}

	l.mu.Lock()
	l.dirty = false
	l.mu.Unlock()
	return nil
}

// Fresh reports whether src was converted to formats while it had its current
// modification time and size, and every recorded output still exists.
func (l *Ledger) Fresh(src string, formats []string) bool {
	info, err := os.Stat(src)
	if err != nil {
		return false
	}

	l.mu.RLock()
	entry, ok := l.data.Entries[filepath.Clean(src)]
	l.mu.RUnlock()
	if !ok {
		return false
	}
	if !entry.LastModified.Equal(info.ModTime()) || entry.Size != info.Size() {
		return false
	}
	if !slices.Equal(entry.Formats, formats) {
		return false
	}
	for _, out := range entry.Outputs {
		if _, err := os.Stat(out); err != nil {
			return false
		}
	}
	return true
}

// Record stores a successful conversion of src.
func (l *Ledger) Record(src string, formats, outputs []string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.Entries[filepath.Clean(src)] = &LedgerEntry{
		LastModified: info.ModTime(),
		Size:         info.Size(),
		Formats:      slices.Clone(formats),
		Outputs:      slices.Clone(outputs),
	}
	l.dirty = true
	return nil
}

// Forget removes src from the ledger.
func (l *Ledger) Forget(src string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.data.Entries[filepath.Clean(src)]; ok {
		delete(l.data.Entries, filepath.Clean(src))
		l.dirty = true
	}
}

// Prune removes entries whose source no longer exists.
func (l *Ledger) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for src := range l.data.Entries {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			delete(l.data.Entries, src)
			removed++
		}
	}
	if removed > 0 {
		l.dirty = true
	}
	return removed
}

// Len returns the number of recorded sources.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data.Entries)
}
