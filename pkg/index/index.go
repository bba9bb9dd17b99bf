// Package index persists which calendar event mirrors which schedule slot.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const fileName = "events.json"

// onDisk is the file layout: slot key ("2006-01-02 15:04") to event id.
type onDisk struct {
	Slots map[string]string `json:"slots"`
}

// EventIndex maps slot keys to calendar event ids. Republishing a schedule
// looks slots up here to patch their events instead of creating new ones.
type EventIndex struct {
	mu    sync.RWMutex
	path  string
	slots map[string]string
	dirty bool
}

// NewEventIndex opens the index kept in dir. A missing file is an empty index.
func NewEventIndex(dir string) (*EventIndex, error) {
	idx := &EventIndex{
		path:  filepath.Join(dir, fileName),
		slots: make(map[string]string),
	}

	b, err := os.ReadFile(idx.path)
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	var data onDisk
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to decode event index %s: %w", idx.path, err)
	}
	for key, eventID := range data.Slots {
		if eventID != "" {
			idx.slots[key] = eventID
		}
	}
	return idx, nil
}

// Save writes the index if it changed since it was opened or last saved.
// The file is replaced atomically.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(idx.path), 0700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(onDisk{Slots: idx.slots}, "", "  ")
	if err != nil {
		return err
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

// Get returns the event id for slotKey, or "" when the slot has none.
func (idx *EventIndex) Get(slotKey string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.slots[slotKey]
}

func (idx *EventIndex) Set(slotKey, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.slots[slotKey] != eventID {
		idx.slots[slotKey] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(slotKey string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.slots[slotKey]; ok {
		delete(idx.slots, slotKey)
		idx.dirty = true
	}
}

func (idx *EventIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.slots)
}

// Stale lists, sorted, the indexed slots missing from keep.
func (idx *EventIndex) Stale(keep map[string]bool) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var stale []string
	for key := range idx.slots {
		if !keep[key] {
			stale = append(stale, key)
		}
	}
	sort.Strings(stale)
	return stale
}
