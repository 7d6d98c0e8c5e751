package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalai-assistant/internal/app"
	"legalai-assistant/internal/store"
	"legalai-assistant/internal/transport/http/middleware"
	"legalai-assistant/internal/transport/http/response"
)

type DocumentHandler struct {
	ingest    *app.IngestService
	sessions  *store.SessionStore
	documents *store.DocumentStore
}

func NewDocumentHandler(ingest *app.IngestService, sessions *store.SessionStore, documents *store.DocumentStore) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, sessions: sessions, documents: documents}
}

// Upload accepts a multipart form with one or more "files" parts and runs
// each through the ingestion pipeline. Per-file failures are reported in
// the batch result; only an all-failed batch maps to an error status.
func (h *DocumentHandler) Upload(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no files in request")
		return
	}

	inputs := make([]app.FileInput, 0, len(fileHeaders))
	opened := make([]interface{ Close() error }, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, openErr := fh.Open()
		if openErr != nil {
			inputs = append(inputs, app.FileInput{Filename: fh.Filename, DeclaredSize: fh.Size, Content: failingReader{openErr}})
			continue
		}
		opened = append(opened, f)
		inputs = append(inputs, app.FileInput{Filename: fh.Filename, DeclaredSize: fh.Size, Content: f})
	}
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	result := h.ingest.IngestBatch(sessionID, inputs)
	if !result.Success {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, result.Message)
		return
	}
	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	session, ok := h.sessions.Get(sessionID)
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		return
	}

	docs := h.documents.ListByIDs(session.DocumentIDs)
	response.OK(c, gin.H{
		"documents":  docs,
		"count":      len(docs),
		"session_id": sessionID,
	})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	documentID := c.Param("id")

	if err := h.ingest.DeleteDocument(sessionID, documentID); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		return
	}
	response.OK(c, gin.H{"deleted_document_id": documentID, "session_id": sessionID})
}

// failingReader surfaces a multipart open error as a per-file save failure
// instead of aborting the batch.
type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
