package store

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"legalai-assistant/internal/model"
)

var (
	ErrMissingFilename     = errors.New("filename is missing")
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")
	ErrFilenameRejected    = errors.New("filename contains a forbidden pattern")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
)

// executable or script extensions rejected anywhere in the filename,
// so "report.exe.pdf" does not slip through the allowlist.
var deniedExtParts = map[string]bool{
	"exe": true, "sh": true, "bat": true, "cmd": true,
	"ps1": true, "dll": true, "msi": true, "com": true,
}

// DocumentStore persists raw bytes under synthetic ids and holds processed
// document records. It has no session awareness.
type DocumentStore struct {
	mu   sync.Mutex
	docs map[string]*model.Document

	uploadDir   string
	maxFileSize int64
	allowedExts map[string]bool
}

func NewDocumentStore(uploadDir string, maxFileSize int64, allowedExts []string) (*DocumentStore, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	allowed := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &DocumentStore{
		docs:        make(map[string]*model.Document),
		uploadDir:   uploadDir,
		maxFileSize: maxFileSize,
		allowedExts: allowed,
	}, nil
}

// Validate checks the filename and the caller-declared size. Advisory
// only: the authoritative size check happens against bytes written in
// Save. declaredSize < 0 means unknown.
func (s *DocumentStore) Validate(filename string, declaredSize int64) error {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ErrMissingFilename
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return ErrFilenameRejected
	}
	parts := strings.Split(strings.ToLower(filename), ".")
	for _, part := range parts[1:] {
		if deniedExtParts[part] {
			return ErrFilenameRejected
		}
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || !s.allowedExts[ext] {
		return ErrExtensionNotAllowed
	}
	if declaredSize > s.maxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Save streams content to disk under a fresh id-derived name (never the
// original filename) and enforces the size limit against actual bytes.
// No partial file survives any failure path.
func (s *DocumentStore) Save(filename string, content io.Reader) (string, error) {
	id := uuid.NewString()
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	path := filepath.Join(s.uploadDir, id+"."+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file failed: %w", err)
	}

	// Copy one byte past the limit so an oversized stream is detectable
	// without draining it.
	written, err := io.Copy(f, io.LimitReader(content, s.maxFileSize+1))
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload file failed: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload file failed: %w", closeErr)
	}
	if written > s.maxFileSize {
		_ = os.Remove(path)
		return "", ErrFileTooLarge
	}
	return path, nil
}

// Record builds the document record from the persisted file, stamping the
// size from the file's actual stat and the owning session, and commits it
// to the store.
func (s *DocumentStore) Record(storagePath, extractedText, originalFilename, sessionID string, clauses []model.Clause) (*model.Document, error) {
	info, err := os.Stat(storagePath)
	if err != nil {
		return nil, fmt.Errorf("stat saved file failed: %w", err)
	}

	base := filepath.Base(storagePath)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	for i := range clauses {
		clauses[i].DocumentID = id
	}

	doc := &model.Document{
		ID:          id,
		Name:        originalFilename,
		MimeType:    mimeTypeFor(originalFilename),
		Size:        info.Size(),
		UploadedAt:  time.Now(),
		TextContent: extractedText,
		Clauses:     clauses,
		StoragePath: storagePath,
		SessionID:   sessionID,
	}

	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *DocumentStore) Get(documentID string) (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return model.Document{}, false
	}
	return *doc, true
}

// ListByIDs returns the documents for the given ids, preserving id order
// and skipping unknown ids.
func (s *DocumentStore) ListByIDs(ids []string) []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			out = append(out, *doc)
		}
	}
	return out
}

// Delete removes the on-disk file (tolerating an already missing file) and
// the record. Returns false if the document is unknown.
func (s *DocumentStore) Delete(documentID string) bool {
	s.mu.Lock()
	doc, ok := s.docs[documentID]
	if ok {
		delete(s.docs, documentID)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
		log.Printf("remove document file failed: %v", err)
	}
	return true
}

// Count returns the number of stored document records.
func (s *DocumentStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func mimeTypeFor(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
