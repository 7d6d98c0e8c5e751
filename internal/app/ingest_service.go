package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"legalai-assistant/internal/clause"
	"legalai-assistant/internal/model"
	"legalai-assistant/internal/store"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrDocumentNotFound = errors.New("document not found")
)

// TextExtractor is the extraction collaborator. It tolerates unreadable
// files by returning a diagnostic string; the pipeline stores whatever
// comes back verbatim.
type TextExtractor interface {
	Extract(path string) string
}

// IngestService is the only writer of the document and session stores. It
// composes validation, storage, extraction, classification, and session
// attachment into one operation per file.
type IngestService struct {
	docs      *store.DocumentStore
	sessions  *store.SessionStore
	extractor TextExtractor
}

func NewIngestService(docs *store.DocumentStore, sessions *store.SessionStore, extractor TextExtractor) *IngestService {
	return &IngestService{
		docs:      docs,
		sessions:  sessions,
		extractor: extractor,
	}
}

type FileInput struct {
	Filename string
	// DeclaredSize is the caller-declared byte count; negative means unknown.
	DeclaredSize int64
	Content      io.Reader
}

type FileResult struct {
	Document *model.Document
	Err      error
}

type BatchResult struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Documents []model.Document `json:"documents"`
	Failed    []string         `json:"failed_files,omitempty"`
	SessionID string           `json:"session_id"`
}

// IngestBatch processes each file independently: one file's failure never
// aborts the rest. The batch fails only when every file fails.
func (s *IngestService) IngestBatch(sessionID string, files []FileInput) *BatchResult {
	result := &BatchResult{SessionID: sessionID, Documents: []model.Document{}}

	for _, file := range files {
		fr := s.ingestOne(sessionID, file)
		if fr.Err != nil {
			log.Printf("ingest %q failed: %v", file.Filename, fr.Err)
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", file.Filename, fr.Err))
			continue
		}
		result.Documents = append(result.Documents, *fr.Document)
	}

	result.Success = len(result.Documents) > 0 || len(files) == 0
	result.Message = batchMessage(len(result.Documents), result.Failed)
	return result
}

// ingestOne runs the full pipeline for a single file: validate, save,
// extract, classify, record, attach. Byte-save and extraction happen
// before any store lock is touched.
func (s *IngestService) ingestOne(sessionID string, file FileInput) FileResult {
	if err := s.docs.Validate(file.Filename, file.DeclaredSize); err != nil {
		return FileResult{Err: err}
	}

	storagePath, err := s.docs.Save(file.Filename, file.Content)
	if err != nil {
		return FileResult{Err: err}
	}

	text := s.extractor.Extract(storagePath)
	clauses := clause.Extract(text)

	doc, err := s.docs.Record(storagePath, text, file.Filename, sessionID, clauses)
	if err != nil {
		return FileResult{Err: err}
	}

	if sessionID != "" {
		if !s.sessions.AttachDocument(sessionID, doc.ID) {
			// The session vanished between upload and attach; drop the
			// document so nothing is orphaned.
			s.docs.Delete(doc.ID)
			return FileResult{Err: ErrSessionNotFound}
		}
	}
	return FileResult{Document: doc}
}

// DeleteDocument detaches the document from its session and removes the
// file and record. Returns ErrDocumentNotFound on a second delete.
func (s *IngestService) DeleteDocument(sessionID, documentID string) error {
	if sessionID != "" {
		s.sessions.DetachDocument(sessionID, documentID)
	}
	if !s.docs.Delete(documentID) {
		return ErrDocumentNotFound
	}
	return nil
}

func batchMessage(succeeded int, failed []string) string {
	if len(failed) == 0 {
		return fmt.Sprintf("Successfully processed %d documents", succeeded)
	}
	shown := failed
	if len(shown) > 3 {
		shown = shown[:3]
	}
	if succeeded == 0 {
		return fmt.Sprintf("All %d files failed: %s", len(failed), strings.Join(shown, "; "))
	}
	return fmt.Sprintf("Successfully processed %d documents. %d files failed: %s",
		succeeded, len(failed), strings.Join(shown, "; "))
}
