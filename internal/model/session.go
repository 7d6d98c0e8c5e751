package model

import "time"

type Session struct {
	ID            string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
	DocumentIDs   []string  `json:"document_ids"`
	DocumentCount int       `json:"document_count"`
}
