package services

import (
	"villeto/internal/cache"
	"villeto/internal/table"
)

// SelectionStore keeps the selected row ids of each table per browser
// session, so selections survive page changes across requests.
type SelectionStore struct {
	cache cache.Cache[table.IDSet]
}

func NewSelectionStore(c cache.Cache[table.IDSet]) *SelectionStore {
	return &SelectionStore{cache: c}
}

func selectionKey(session, tableName string) string {
	return session + "|" + tableName
}

// Get returns the stored selection, or an empty set.
func (s *SelectionStore) Get(session, tableName string) table.IDSet {
	if ids, ok := s.cache.Get(selectionKey(session, tableName)); ok {
		return ids
	}
	return table.IDSet{}
}

// Set replaces the stored selection. An empty set removes the entry.
func (s *SelectionStore) Set(session, tableName string, ids table.IDSet) {
	if ids.Len() == 0 {
		s.cache.Delete(selectionKey(session, tableName))
		return
	}
	s.cache.Set(selectionKey(session, tableName), ids)
}

// Clear drops the stored selection.
func (s *SelectionStore) Clear(session, tableName string) {
	s.cache.Delete(selectionKey(session, tableName))
}
