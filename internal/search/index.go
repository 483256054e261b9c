package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/staybook/staybook-server/internal/domain"
)

// SearchIndex wraps a Bleve index of places.
//
// All public methods are safe for concurrent use. Rebuild takes the
// write lock; everything else shares the read lock.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Uses discard if nil
}

// mappingVersion is bumped whenever buildIndexMapping changes. A mismatch
// on startup drops the index so it is rebuilt from the store.
const mappingVersion = "1"

const batchSize = 500

// NewSearchIndex opens the index under DataPath, creating it when missing,
// unreadable or built with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Shutdown is called by the DI container.
func (s *SearchIndex) Shutdown() error {
	return s.Close()
}

// IndexPlace adds or replaces a single place.
func (s *SearchIndex) IndexPlace(p *domain.Place) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := PlaceToDocument(p)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexPlaces indexes places in batches.
func (s *SearchIndex) IndexPlaces(places []*domain.Place) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexBatches(places)
}

func (s *SearchIndex) indexBatches(places []*domain.Place) error {
	for i := 0; i < len(places); i += batchSize {
		end := min(i+batchSize, len(places))

		batch := s.index.NewBatch()
		for _, p := range places[i:end] {
			doc := PlaceToDocument(p)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeletePlace removes a place from the index.
func (s *SearchIndex) DeletePlace(placeID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(placeID)
}

// DocumentCount returns the number of indexed places.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and refills it with places. Searches block
// until it returns.
func (s *SearchIndex) Rebuild(places []*domain.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	if err := s.indexBatches(places); err != nil {
		return err
	}

	s.logger.Info("search index rebuilt", "places", len(places))
	return nil
}
