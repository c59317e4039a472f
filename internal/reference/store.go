package reference

import (
	"sync"

	"github.com/sirupsen/logrus"

	"immoprice/server/internal/models"
)

// Store owns the current reference table and swaps it on reload
type Store struct {
	path   string
	logger *logrus.Logger
	mu     sync.RWMutex
	table  *Table
}

// NewStore loads the table at path. The store is usable only once this returns.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	table, err := Load(path, logger)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, logger: logger, table: table}, nil
}

// NewStaticStore wraps an already built table. Reload re-reads the table's source.
func NewStaticStore(table *Table, logger *logrus.Logger) *Store {
	return &Store{path: table.Source(), logger: logger, table: table}
}

// Table returns the current table
func (s *Store) Table() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Lookup resolves a postal code against the current table
func (s *Store) Lookup(postalCode int) (*models.PostalCodeRecord, bool) {
	return s.Table().Lookup(postalCode)
}

// Reload re-reads the reference file. On failure the previous table stays in place
// and the error is left to the caller to report.
func (s *Store) Reload() error {
	table, err := Load(s.path, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.table
	s.table = table
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"previous_postal_codes": previous.Len(),
			"postal_codes":          table.Len(),
		}).Info("Reference table reloaded")
	}
	return nil
}
