package memory

import (
	"sync"
	"time"

	"github.com/omarshaarawi/ffdata/internal/query"
)

// Loaded is the snapshot currently being served.
type Loaded struct {
	Table    *query.Table
	Path     string
	LoadedAt time.Time
}

type Repository struct {
	loaded *Loaded
	mu     sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveTable(table *query.Table, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = &Loaded{Table: table, Path: path, LoadedAt: time.Now()}
}

func (r *Repository) GetTable() *Loaded {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}
