// Package textextract turns uploaded resume files into plain text.
package textextract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const docxBody = "word/document.xml"

var (
	xmlTag        = regexp.MustCompile(`<[^>]+>`)
	inlineSpaces  = regexp.MustCompile(`[ \t\f\v]+`)
	repeatedLines = regexp.MustCompile(`\n{3,}`)
)

// Supported lists the accepted file extensions.
var Supported = []string{".txt", ".md", ".pdf", ".docx"}

// UnsupportedFormatError is returned for files with an unknown extension.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q: expected one of %s",
		filepath.Ext(e.Filename), strings.Join(Supported, ", "))
}

// ExtractionError is returned when a supported file cannot be read.
type ExtractionError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting text from %s (%s): %v", e.Filename, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrEmpty is wrapped into an ExtractionError when a file holds no text.
var ErrEmpty = errors.New("no text found")

// Extract returns the text of data, picking the decoder by filename extension.
func Extract(data []byte, filename string) (string, error) {
	var (
		text  string
		stage string
		err   error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".md":
		stage = "decode"
		text, err = plain(data)
	case ".pdf":
		stage = "pdf"
		text, err = fromPDF(data)
	case ".docx":
		stage = "docx"
		text, err = fromDOCX(data)
	default:
		return "", &UnsupportedFormatError{Filename: filename}
	}

	if err != nil {
		return "", &ExtractionError{Filename: filename, Stage: stage, Err: err}
	}

	text = normalize(text)
	if text == "" {
		return "", &ExtractionError{Filename: filename, Stage: stage, Err: ErrEmpty}
	}

	return text, nil
}

func plain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8")
	}
	return string(data), nil
}

func fromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		body, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}

		xml := string(body)
		xml = strings.ReplaceAll(xml, "</w:p>", "\n")
		xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
		xml = strings.ReplaceAll(xml, "<w:br/>", "\n")
		return unescapeXML(xmlTag.ReplaceAllString(xml, "")), nil
	}

	return "", fmt.Errorf("%s not found", docxBody)
}

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

// normalize unifies line endings, collapses inline whitespace and keeps at most one
// blank line between paragraphs. Blank lines delimit sections for the resume parser.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaces.ReplaceAllString(line, " "))
	}

	return strings.TrimSpace(repeatedLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
