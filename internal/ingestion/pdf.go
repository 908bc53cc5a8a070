package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// extractPDF reads the text layer page by page. The parser panics on some
// malformed inputs, so that is turned into an error.
func extractPDF(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		buf.WriteString(pageText)
	}
	return buf.String(), nil
}

// rasterizePDF renders every page to PNG with pdftoppm (poppler).
func rasterizePDF(ctx context.Context, data []byte) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "auraflow_pdfimg")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, err
	}
	prefix := filepath.Join(dir, "page")
	if err := exec.CommandContext(ctx, "pdftoppm", "-png", src, prefix).Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm convert failed: %w", err)
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order
	sort.Strings(matches)

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		pages = append(pages, b)
	}
	return pages, nil
}
