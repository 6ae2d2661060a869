// Package memory is an in-process sheets.Exporter. The CLI uses it for
// dry runs and tests use it to observe exports.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	ports "villeto/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

var _ ports.Exporter = (*Store)(nil)

func New() *Store {
	return &Store{sheets: map[string][][]string{}}
}

// ReplaceSheet overwrites the stored records of sheet.
func (s *Store) ReplaceSheet(_ context.Context, sheet string, records [][]string) (string, error) {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return "", errors.New("empty sheet name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = cloneRecords(records)
	return fmt.Sprintf("mem:%s!1:%d", sheet, len(records)), nil
}

// AppendRows adds records after the stored ones.
func (s *Store) AppendRows(_ context.Context, sheet string, records [][]string) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.sheets[sheet]) + 1
	s.sheets[sheet] = append(s.sheets[sheet], cloneRecords(records)...)
	return fmt.Sprintf("mem:%s!%d:%d", sheet, first, len(s.sheets[sheet])), nil
}

// Sheet returns a copy of the records stored for sheet.
func (s *Store) Sheet(sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.sheets[sheet])
}

func cloneRecords(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, r := range in {
		out[i] = slices.Clone(r)
	}
	return out
}
