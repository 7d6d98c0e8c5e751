package model

import "time"

type ClauseType string

const (
	ClauseSupportive ClauseType = "supportive"
	ClauseCritical   ClauseType = "critical"
	ClauseNeutral    ClauseType = "neutral"
)

// Clause is a structurally detected span of document text. Immutable once
// produced; lives only as a child of a Document.
type Clause struct {
	Number     string     `json:"number"`
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	Type       ClauseType `json:"type"`
	DocumentID string     `json:"document_id"`
}

type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MimeType    string    `json:"type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
	TextContent string    `json:"text_content,omitempty"`
	Clauses     []Clause  `json:"clauses,omitempty"`
	StoragePath string    `json:"-"`
	// SessionID is a lookup convenience only; the session store owns the
	// authoritative membership list.
	SessionID string `json:"session_id,omitempty"`
}
