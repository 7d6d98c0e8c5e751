package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"legalai-assistant/internal/model"
)

const (
	docTextBudget     = 2000
	clauseTextBudget  = 200
	maxContextClauses = 10
	historyWindow     = 5

	truncationMarker = "[...]"
)

// NoDocumentsContext is returned instead of an empty string so callers can
// tell "nothing to say" apart from "no documents uploaded".
const NoDocumentsContext = "No documents have been uploaded in this session."

// BuildContext renders the documents into one bounded text blob, in
// session attachment order. Deterministic and pure given its inputs.
func BuildContext(docs []model.Document) string {
	if len(docs) == 0 {
		return NoDocumentsContext
	}

	var sb strings.Builder
	sb.WriteString("=== UPLOADED DOCUMENTS ===\n")
	for _, doc := range docs {
		fmt.Fprintf(&sb, "\nDocument: %s (%s, %d bytes, uploaded %s)\n",
			doc.Name, doc.MimeType, doc.Size, doc.UploadedAt.Format("2006-01-02 15:04:05"))

		if doc.TextContent != "" {
			sb.WriteString(truncate(doc.TextContent, docTextBudget))
			sb.WriteString("\n")
		}

		if len(doc.Clauses) > 0 {
			sb.WriteString("Key clauses:\n")
			limit := len(doc.Clauses)
			if limit > maxContextClauses {
				limit = maxContextClauses
			}
			for _, clause := range doc.Clauses[:limit] {
				fmt.Fprintf(&sb, "- %s [%s]: %s\n",
					clause.Number, clause.Type, truncate(clause.Text, clauseTextBudget))
			}
		}

		sb.WriteString(strings.Repeat("-", 50))
		sb.WriteString("\n")
	}
	return sb.String()
}

const systemPrompt = `You are a specialized AI assistant for analyzing legal and insurance documents.
Base every answer on the provided document content, cite clause numbers when
referencing sections, explain implications in plain language, and state
explicitly when information is unclear or missing. Do not give legal advice;
only analyze and explain the documents.`

// buildPrompt assembles the structured prompt: document context, the
// trailing history window, then the current question. Only the most recent
// turns are included; older ones are dropped without summarization.
func buildPrompt(contextBlock string, history []model.ChatTurn, question string) string {
	var sb strings.Builder

	sb.WriteString("DOCUMENT CONTEXT:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\n")

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		sb.WriteString("CONVERSATION HISTORY:\n")
		for _, turn := range history {
			role := "User"
			if turn.Role == "assistant" {
				role = "Assistant"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, turn.Content)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("CURRENT QUESTION:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nProvide a detailed analysis based on the document context above.")
	return sb.String()
}

// truncate cuts s to at most limit bytes, backing off to a rune boundary
// so a multi-byte rune at the cut never leaves invalid UTF-8 behind.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}
