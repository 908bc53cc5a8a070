// Package tesseract implements ingestion.Recognizer on top of gosseract.
// It lives apart from ingestion because it needs cgo and libtesseract.
package tesseract

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

type Recognizer struct {
	languages []string
}

// New returns a recognizer for the given tesseract language codes ("eng" when empty).
func New(languages ...string) *Recognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Recognizer{languages: languages}
}

func (r *Recognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.languages...); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
