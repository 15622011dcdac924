package index

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/jaayvee/internal/domain"
)

// MemoryIndex is the in-memory ventures catalogue served to visitors.
// It is the primary source; Redis only mirrors it across restarts.
type MemoryIndex struct {
	mu         sync.RWMutex
	ventures   map[string]*domain.Venture // ID -> Venture
	lastReload time.Time
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		ventures: make(map[string]*domain.Venture),
	}
}

// UpdateVentures replaces all ventures in the index
func (idx *MemoryIndex) UpdateVentures(ventures []*domain.Venture) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.ventures = make(map[string]*domain.Venture, len(ventures))
	for _, v := range ventures {
		idx.ventures[v.ID] = v
	}
	idx.lastReload = time.Now()
}

// GetVenture retrieves a venture by ID
func (idx *MemoryIndex) GetVenture(id string) (*domain.Venture, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	v, ok := idx.ventures[id]
	return v, ok
}

// GetAllVentures returns all ventures, disabled included, in catalogue order.
func (idx *MemoryIndex) GetAllVentures() []*domain.Venture {
	idx.mu.RLock()
	ventures := make([]*domain.Venture, 0, len(idx.ventures))
	for _, v := range idx.ventures {
		ventures = append(ventures, v)
	}
	idx.mu.RUnlock()

	sort.SliceStable(ventures, func(i, j int) bool {
		if ventures[i].Position != ventures[j].Position {
			return ventures[i].Position < ventures[j].Position
		}
		return ventures[i].ID < ventures[j].ID
	})
	return ventures
}

// GetEnabledVentures returns the ventures shown to visitors, in catalogue order.
func (idx *MemoryIndex) GetEnabledVentures() []*domain.Venture {
	all := idx.GetAllVentures()
	enabled := all[:0]
	for _, v := range all {
		if !v.Disabled {
			enabled = append(enabled, v)
		}
	}
	return enabled
}

// DeleteVenture removes a venture from the index
func (idx *MemoryIndex) DeleteVenture(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.ventures, id)
}

// Count returns the number of enabled ventures
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := 0
	for _, v := range idx.ventures {
		if !v.Disabled {
			n++
		}
	}
	return n
}

// GetLastReload returns the timestamp of the last catalogue reload
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
