// Package extract turns persisted upload files into plain text. It never
// returns an error to callers: unreadable or corrupt files yield a short
// diagnostic string instead, which the pipeline stores verbatim.
package extract

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type Extractor struct {
	tesseractCmd string
}

func New(tesseractCmd string) *Extractor {
	return &Extractor{tesseractCmd: tesseractCmd}
}

// Extract returns the text content of the file at path, dispatching on
// extension.
func (e *Extractor) Extract(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "pdf":
		return e.extractPDF(path)
	case "jpg", "jpeg", "png":
		return e.extractImage(path)
	case "txt":
		return e.extractPlain(path)
	default:
		return fmt.Sprintf("Unsupported file type for text extraction: %s", filepath.Ext(path))
	}
}

// OCRAvailable reports whether the configured tesseract binary can run.
func (e *Extractor) OCRAvailable() bool {
	if e.tesseractCmd == "" {
		return false
	}
	_, err := exec.LookPath(e.tesseractCmd)
	return err == nil
}

func (e *Extractor) extractPDF(path string) string {
	text, err := pdfText(path)
	if err != nil {
		return fmt.Sprintf("Error extracting text from PDF: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return "The PDF contains no extractable text."
	}
	return text
}

func (e *Extractor) extractImage(path string) string {
	if !e.OCRAvailable() {
		return "Image OCR is not available; install tesseract to extract text from images."
	}
	out, err := exec.Command(e.tesseractCmd, path, "stdout").Output()
	if err != nil {
		return fmt.Sprintf("Image OCR failed: %v", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "Image OCR produced no text."
	}
	return text
}

func (e *Extractor) extractPlain(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading text file: %v", err)
	}
	return string(raw)
}
