package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	FormatPDF   = "pdf"
	FormatText  = "text"
	FormatImage = "image"
)

var ErrUnsupported = errors.New("unsupported document format")

// ExtractionError reports a document that could not be turned into text.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("extraction failed (%s): %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Recognizer turns an image into text. The tesseract package provides the
// gosseract-backed implementation.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

type Extractor struct {
	ocr       Recognizer
	rasterize func(ctx context.Context, pdf []byte) ([][]byte, error)
}

type Option func(*Extractor)

// WithOCR enables image documents and the scanned-PDF fallback.
func WithOCR(r Recognizer) Option {
	return func(e *Extractor) { e.ocr = r }
}

// WithRasterizer replaces the pdftoppm page renderer used before OCR.
func WithRasterizer(fn func(ctx context.Context, pdf []byte) ([][]byte, error)) Option {
	return func(e *Extractor) { e.rasterize = fn }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{rasterize: rasterizePDF}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract buffers r and returns its text. PDF pages are concatenated in page
// order with no separator between them.
func (e *Extractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &ExtractionError{Err: fmt.Errorf("read document: %w", err)}
	}

	switch format := detectFormat(data); format {
	case FormatPDF:
		text, err := extractPDF(ctx, data)
		if err != nil {
			return "", &ExtractionError{Format: format, Err: err}
		}
		if strings.TrimSpace(text) == "" && e.ocr != nil {
			// no text layer, probably a scan
			text, err = e.ocrPDF(ctx, data)
			if err != nil {
				return "", &ExtractionError{Format: format, Err: err}
			}
		}
		return text, nil
	case FormatImage:
		if e.ocr == nil {
			return "", &ExtractionError{Format: format, Err: fmt.Errorf("%w: OCR disabled", ErrUnsupported)}
		}
		text, err := e.ocr.Recognize(ctx, data)
		if err != nil {
			return "", &ExtractionError{Format: format, Err: err}
		}
		return text, nil
	case FormatText:
		return string(data), nil
	default:
		return "", &ExtractionError{Format: format, Err: ErrUnsupported}
	}
}

// ExtractFile opens path and extracts it.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	defer f.Close()
	return e.Extract(ctx, f)
}

func (e *Extractor) ocrPDF(ctx context.Context, data []byte) (string, error) {
	pages, err := e.rasterize(ctx, data)
	if err != nil {
		return "", err
	}
	var combined strings.Builder
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		t, err := e.ocr.Recognize(ctx, page)
		if err != nil {
			continue
		}
		combined.WriteString(t)
		combined.WriteString("\n")
	}
	return strings.TrimSpace(combined.String()), nil
}

func detectFormat(data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return FormatPDF
	}
	ct := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(ct, "text/plain"):
		return FormatText
	case ct == "image/png", ct == "image/jpeg":
		return FormatImage
	default:
		return ct
	}
}
