package textextract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func docx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{
			name:     "plain text",
			filename: "cv.txt",
			data:     []byte("\xef\xbb\xbfJane Doe\r\n\r\n\r\n\r\nSKILLS\r\nGo,   Python  "),
			want:     "Jane Doe\n\nSKILLS\nGo, Python",
		},
		{
			name:     "markdown upper-case extension",
			filename: "CV.MD",
			data:     []byte("# Jane\n"),
			want:     "# Jane",
		},
		{
			name:     "docx",
			filename: "cv.docx",
			data: docx(t, `<w:document><w:body>`+
				`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
				`<w:p><w:r><w:t>R&amp;D</w:t><w:tab/><w:t>Engineer</w:t></w:r></w:p>`+
				`</w:body></w:document>`),
			want: "Jane Doe\nR&D Engineer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Extract(tt.data, tt.filename)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := Extract([]byte("x"), "cv.rtf")
		var unsupported *UnsupportedFormatError
		if !errors.As(err, &unsupported) {
			t.Fatalf("expected UnsupportedFormatError, got %v", err)
		}
	})

	tests := []struct {
		name     string
		filename string
		data     []byte
		stage    string
	}{
		{name: "broken pdf", filename: "cv.pdf", data: []byte("not a pdf"), stage: "pdf"},
		{name: "broken docx", filename: "cv.docx", data: []byte("not a zip"), stage: "docx"},
		{name: "docx without body", filename: "cv.docx", data: nil, stage: "docx"},
		{name: "invalid utf8", filename: "cv.txt", data: []byte{0xff, 0xfe, 0xfd}, stage: "decode"},
		{name: "empty", filename: "cv.txt", data: []byte("  \n\t "), stage: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(tt.data, tt.filename)
			var extraction *ExtractionError
			if !errors.As(err, &extraction) {
				t.Fatalf("expected ExtractionError, got %v", err)
			}
			if extraction.Stage != tt.stage {
				t.Fatalf("expected stage %q, got %q", tt.stage, extraction.Stage)
			}
		})
	}

	if _, err := Extract([]byte(" "), "a.txt"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
