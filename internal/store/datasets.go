package store

import (
	"sort"
	"sync"

	"github.com/comment-profiler/internal/dataset"
)

// Dataset names recognized by the API. "comments" is always required;
// "articles" or "qa" supplies content metadata depending on the export.
const (
	DatasetComments = "comments"
	DatasetArticles = "articles"
	DatasetQA       = "qa"
)

// DatasetInfo describes one loaded table
type DatasetInfo struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// DatasetRegistry holds the named tables uploaded to a running server.
// Tables are replaced wholesale on re-upload and read concurrently by
// jobs, so the registry hands out the immutable *Table pointers.
type DatasetRegistry struct {
	mu     sync.RWMutex
	tables map[string]*dataset.Table
}

// NewDatasetRegistry creates an empty registry
func NewDatasetRegistry() *DatasetRegistry {
	return &DatasetRegistry{tables: make(map[string]*dataset.Table)}
}

// Put registers a loaded table under a name
func (r *DatasetRegistry) Put(name string, t *dataset.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[name] = t
}

// Get returns the table registered under a name
func (r *DatasetRegistry) Get(name string) (*dataset.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// Metadata returns the content-metadata table: articles when present,
// otherwise the qa table.
func (r *DatasetRegistry) Metadata() (*dataset.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tables[DatasetArticles]; ok {
		return t, true
	}
	t, ok := r.tables[DatasetQA]
	return t, ok
}

// List describes all loaded tables, sorted by name
func (r *DatasetRegistry) List() []DatasetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]DatasetInfo, 0, len(r.tables))
	for name, t := range r.tables {
		infos = append(infos, DatasetInfo{Name: name, Rows: t.Len(), Columns: len(t.Columns)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
