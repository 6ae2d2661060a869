package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"villeto/internal/cache"
	"villeto/internal/core"
	"villeto/internal/tables"
)

// DefaultPreviewRows caps the rows kept from one upload.
const DefaultPreviewRows = 5000

var (
	ErrEmptyCSV       = errors.New("csv file is empty")
	ErrTooManyRows    = errors.New("csv file has too many rows")
	ErrPreviewMissing = errors.New("preview not found or expired")
)

// Preview is a parsed CSV upload shown as a local-mode table.
type Preview struct {
	ID        string
	Name      string
	Header    []string
	Rows      []tables.PreviewRow
	CreatedAt time.Time
}

// ParseCSV reads a header line and up to maxRows data lines. Ragged lines
// are accepted; blank lines are skipped by the reader.
func ParseCSV(name string, r io.Reader, maxRows int) (Preview, error) {
	if maxRows <= 0 {
		maxRows = DefaultPreviewRows
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Preview{}, ErrEmptyCSV
	}
	if err != nil {
		return Preview{}, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	p := Preview{Name: name, Header: header, CreatedAt: time.Now()}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Preview{}, fmt.Errorf("read csv line %d: %w", len(p.Rows)+2, err)
		}
		if len(p.Rows) == maxRows {
			return Preview{}, fmt.Errorf("%w (max %d)", ErrTooManyRows, maxRows)
		}
		p.Rows = append(p.Rows, tables.PreviewRow{ID: "r" + strconv.Itoa(len(p.Rows)+1), Cells: rec})
	}
	return p, nil
}

// PreviewStore keeps uploaded previews until they expire from the cache.
type PreviewStore struct {
	cache cache.Cache[Preview]
}

func NewPreviewStore(c cache.Cache[Preview]) *PreviewStore {
	return &PreviewStore{cache: c}
}

// Save assigns p a new id, stores it and returns the id.
func (s *PreviewStore) Save(p Preview) string {
	p.ID = core.NewID()
	s.cache.Set(p.ID, p)
	return p.ID
}

// Get returns a stored preview.
func (s *PreviewStore) Get(id string) (Preview, error) {
	if !core.ValidID(id) {
		return Preview{}, ErrPreviewMissing
	}
	p, ok := s.cache.Get(id)
	if !ok {
		return Preview{}, ErrPreviewMissing
	}
	return p, nil
}
