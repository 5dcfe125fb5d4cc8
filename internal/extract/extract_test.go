package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromDocx(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Software Engineer</w:t></w:r></w:p></w:body></w:document>`)

	text, err := Text(context.Background(), data, "application/zip", "resume.docx")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Software Engineer") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextStripsControlCharacters(t *testing.T) {
	data := buildDocx(t, "<w:document><w:body><w:p><w:r><w:t>Jane\x00\x01 Doe</w:t></w:r></w:p></w:body></w:document>")

	text, err := Text(context.Background(), data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "resume.docx")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if strings.ContainsRune(text, 0) {
		t.Fatalf("expected NUL bytes stripped, got %q", text)
	}
	if !strings.Contains(text, "Jane Doe") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextRejectsEmptyDocument(t *testing.T) {
	data := buildDocx(t, `<w:document><w:body></w:body></w:document>`)

	_, err := Text(context.Background(), data, "application/zip", "resume.docx")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestTextRejectsCorruptPDF(t *testing.T) {
	data := []byte("%PDF-1.4 this is not a real pdf body")

	if _, err := Text(context.Background(), data, "application/pdf", "resume.pdf"); err == nil {
		t.Fatal("expected corrupt pdf to fail")
	}
}

func TestTextRejectsUnsupportedMime(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = Text(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestStripControlKeepsWhitespace(t *testing.T) {
	got := stripControl("a\x00b\nc\td\x7fe")
	if got != "ab\nc\tde" {
		t.Fatalf("stripControl = %q", got)
	}
}
