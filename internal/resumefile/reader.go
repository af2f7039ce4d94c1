// Package resumefile turns résumé documents on disk into plain text.
package resumefile

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the résumé file does not exist.
	ErrNotFound = errors.New("resume file not found")
	// ErrUnsupportedFormat is returned for formats that cannot be turned into
	// text, including documents the parsers reject.
	ErrUnsupportedFormat = errors.New("unsupported resume format")
)

var unsupportedExtensions = map[string]struct{}{
	".doc":   {},
	".rtf":   {},
	".odt":   {},
	".pages": {},
}

// Reader extracts text from .pdf, .docx and plain text files.
type Reader struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// ReadText returns the text content of the file at path. Files with unknown
// extensions are read as UTF-8 text.
func (r *Reader) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	r.logger.Debug("reading resume", zap.String("path", path), zap.String("format", ext))

	if _, ok := unsupportedExtensions[ext]; ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	switch ext {
	case ".pdf":
		return readPDF(path)
	case ".docx":
		return readDocx(path)
	default:
		return readPlain(path)
	}
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

func readPDF(path string) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: pdf: %v", ErrUnsupportedFormat, rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %v", ErrUnsupportedFormat, i, err)
		}
		pages = append(pages, content)
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

func readDocx(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrUnsupportedFormat, err)
	}
	defer doc.Close()

	text, err := documentText(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrUnsupportedFormat, err)
	}
	return text, nil
}

// documentText collects the runs of a WordprocessingML body, one line per
// paragraph. Tabs and breaks count only inside runs so tab stop definitions in
// paragraph properties are not mistaken for content.
func documentText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		runDepth   int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if runDepth > 0 {
					current.WriteByte('\t')
				}
			case "br":
				if runDepth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "r":
				runDepth--
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}
