// Package pdftext reads the text layer of a single PDF page.
// Scanned pages without a text layer come back empty; there is no OCR.
package pdftext

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/pagevoice/pagevoice/pkg/faults"
	"github.com/pagevoice/pagevoice/pkg/logger"
)

// ExtractPage returns the plain text of the given 1-based page.
// A missing file wraps faults.ErrNotFound and a page index beyond the
// document wraps faults.ErrOutOfRange. A page whose text layer is empty
// or unreadable returns "" without an error.
func ExtractPage(path string, page int) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("pdf file %s: %w", path, faults.ErrNotFound)
		}
		return "", err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	logger.InfoCF("pdftext", "Opened PDF", map[string]any{
		"path":  path,
		"pages": total,
	})

	if page < 1 || page > total {
		return "", fmt.Errorf("page %d of %d: %w", page, total, faults.ErrOutOfRange)
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		logger.WarnCF("pdftext", "No extractable text on page", map[string]any{"page": page})
		return "", nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		// Pages that cannot be decoded behave like scanned pages.
		logger.WarnCF("pdftext", "Text extraction failed, treating page as empty", map[string]any{
			"page":  page,
			"error": err.Error(),
		})
		return "", nil
	}

	if text == "" {
		logger.WarnCF("pdftext", "No extractable text on page", map[string]any{"page": page})
		return "", nil
	}

	logger.InfoCF("pdftext", "Extracted page text", map[string]any{
		"page":  page,
		"chars": len(text),
	})
	return text, nil
}
