package docqa

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoText = errors.New("no extractable text in document")

// Page is the plain text of one PDF page, numbered from 1
type Page struct {
	Number int
	Text   string
}

// ExtractPages reads a PDF and returns its non-empty pages. When per-page
// extraction yields nothing the whole document is returned as page 1.
func ExtractPages(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return extractPages(data)
}

func extractPages(data []byte) ([]Page, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}

	var pages []Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = collapseWhitespace(text); text != "" {
			pages = append(pages, Page{Number: i, Text: text})
		}
	}
	if len(pages) > 0 {
		return pages, nil
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("pdf read: %w", err)
	}
	if text := collapseWhitespace(string(b)); text != "" {
		return []Page{{Number: 1, Text: text}}, nil
	}
	return nil, ErrNoText
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
