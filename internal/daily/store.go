// Package daily implements the document lifecycle: stub-on-missing reads,
// midnight rollover with archival, and locked read-modify-write merges.
package daily

import (
	stderrors "errors"

	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/storage"
)

// Store reads and writes named documents. Reads never fail: a missing,
// unreadable or corrupt document reads as its stub.
type Store struct {
	provider storage.Provider
}

func NewStore(provider storage.Provider) *Store {
	return &Store{provider: provider}
}

func (s *Store) Provider() storage.Provider {
	return s.provider
}

// Read returns the stored document or a fresh stub.
func (s *Store) Read(name string) documents.Document {
	stub := documents.Stub(name)
	if stub == nil {
		stub = documents.Document{}
	}

	data, err := s.provider.ReadDocument(name)
	if err != nil {
		if !stderrors.Is(err, storage.ErrNotFound) {
			logger.Warn("Failed to read document, using stub", "document", name, "error", err)
		}
		return stub
	}

	doc, err := documents.Decode(data)
	if err != nil {
		logger.Warn("Corrupt document, using stub", "document", name, "error", err)
		return stub
	}
	return doc
}

// Write fully overwrites the named document.
func (s *Store) Write(name string, doc documents.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	return s.provider.WriteDocument(name, data)
}
