package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfText extracts plain text from every page of the PDF, separating pages
// with a marker so clause numbers keep their page context.
func pdfText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single bad page should not sink the whole document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n", pageNum, text)
	}
	return sb.String(), nil
}
