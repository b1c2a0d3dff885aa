// PDF extraction: hybrid dual-extractor strategy with OCR fallback for
// scanned documents, per spec.md §4.1. Grounded on other_examples' cotai-pdf-processor
// pdf_processor.go (ledongthuc/pdf + gosseract combination) and
// original_source/.../document_processor/pdf_processor.py for the
// page-by-page extractor-selection algorithm.
package docproc

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

const minAggregateLen = 100

// ExtractResult carries the raw concatenated text and page count from one
// extraction pass.
type ExtractResult struct {
	Text      string
	PageCount int
	UsedOCR   bool
}

// extractPagePrimary is the geometry-aware extractor: reading order as laid
// out on the page.
func extractPagePrimary(p pdf.Page) (string, error) {
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return text, nil
}

// extractPageSecondary is the table-aware extractor: row-grouped text,
// which better preserves tabular structure at the cost of reading-order
// fidelity on prose paragraphs.
func extractPageSecondary(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			b.WriteString(word.S)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// extractHybrid implements spec.md §4.1 step 1: per page, pick the secondary
// extractor's text when its length >= 0.9x the primary's, else the primary.
func extractHybrid(path string) (ExtractResult, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("pdf open: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		primary, errP := extractPagePrimary(page)
		secondary, errS := extractPageSecondary(page)

		var chosen string
		switch {
		case errP != nil && errS != nil:
			continue
		case errP != nil:
			chosen = secondary
		case errS != nil:
			chosen = primary
		case float64(len(secondary)) >= 0.9*float64(len(primary)):
			chosen = secondary
		default:
			chosen = primary
		}
		pages = append(pages, chosen)
	}

	return ExtractResult{
		Text:      strings.Join(pages, "\n\n"),
		PageCount: numPages,
	}, nil
}

// extractMinimal is the degraded single-extractor pass used when the hybrid
// pass itself throws (spec.md §4.1 step 3).
func extractMinimal(path string) (ExtractResult, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("pdf open (minimal): %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return ExtractResult{Text: strings.Join(pages, "\n\n"), PageCount: numPages}, nil
}

// ocrDocument runs gosseract directly against the PDF file at path, the same
// direct-SetImage pattern the cotai pdf-processor uses rather than a
// rasterize-then-OCR pipeline.
func ocrDocument(path string, logger *zap.Logger) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	client.SetLanguage("eng")
	client.SetPageSegMode(gosseract.PSM_AUTO)

	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("ocr set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr recognize: %w", err)
	}
	if logger != nil {
		logger.Debug("ocr complete", zap.Int("chars", len(text)))
	}
	return text, nil
}

// Extract runs the full hybrid-with-OCR-fallback strategy for one PDF file.
func Extract(path string, logger *zap.Logger) (ExtractResult, error) {
	result, err := extractHybrid(path)
	if err != nil {
		if logger != nil {
			logger.Warn("hybrid extraction failed, falling back to minimal", zap.Error(err))
		}
		result, err = extractMinimal(path)
		if err != nil {
			return ExtractResult{}, fmt.Errorf("extraction error: %w", err)
		}
	}

	if len(strings.TrimSpace(result.Text)) < minAggregateLen {
		if logger != nil {
			logger.Info("document classified as scanned, engaging OCR", zap.String("path", path))
		}
		text, err := ocrDocument(path, logger)
		if err != nil {
			result.Text = fmt.Sprintf("OCR FAILED: %v", err)
		} else {
			result.Text = text
		}
		result.UsedOCR = true
	}

	return result, nil
}
