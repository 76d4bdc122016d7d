package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func contentTypes(main string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Override PartName="/main.xml" ContentType="` + main + `"/></Types>`
}

func TestFormat_Names(t *testing.T) {
	tests := []struct {
		format      Format
		name, ext   string
		contentType string
	}{
		{PDF, "PDF", ".pdf", "application/pdf"},
		{DOCX, "DOCX", ".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{DOCM, "DOCM", ".docm", "application/vnd.ms-word.document.macroEnabled.12"},
		{ODT, "ODT", ".odt", "application/vnd.oasis.opendocument.text"},
		{Unknown, "Unknown", "", "application/octet-stream"},
		{Format(99), "Unknown", "", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.format.Extension(); got != tt.ext {
			t.Errorf("%s Extension() = %q, want %q", tt.name, got, tt.ext)
		}
		if got := tt.format.ContentType(); got != tt.contentType {
			t.Errorf("%s ContentType() = %q, want %q", tt.name, got, tt.contentType)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"contract.docx", DOCX},
		{"CONTRACT.DOCX", DOCX},
		{"macros.docm", DOCM},
		{"/path/to/file.pdf", PDF},
		{"sheet.xlsx", XLSX},
		{"deck.pptx", PPTX},
		{"notes.odt", ODT},
		{"notes.txt", Unknown},
		{"noext", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"pdf", []byte("%PDF-1.7\n%%EOF"), PDF},
		{"docx by content type", zipOf(t, map[string]string{
			"[Content_Types].xml": contentTypes("application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"),
			"main.xml":            "<w:document/>",
		}), DOCX},
		{"docm by content type", zipOf(t, map[string]string{
			"[Content_Types].xml": contentTypes("application/vnd.ms-word.document.macroEnabled.main+xml"),
		}), DOCM},
		{"xlsx by folder", zipOf(t, map[string]string{"xl/workbook.xml": "<workbook/>"}), XLSX},
		{"docx by folder", zipOf(t, map[string]string{"word/document.xml": "<w:document/>"}), DOCX},
		{"odt", zipOf(t, map[string]string{"mimetype": "application/vnd.oasis.opendocument.text"}), ODT},
		{"plain zip", zipOf(t, map[string]string{"readme.txt": "hi"}), Unknown},
		{"text", []byte("Hello, World!"), Unknown},
		{"empty", nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectBytes(tt.data)
			if err != nil {
				t.Fatalf("DetectBytes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectBytes_CorruptZIP(t *testing.T) {
	if _, err := DetectBytes([]byte("PK\x03\x04garbage")); err == nil {
		t.Error("expected an error for a truncated archive")
	}
}

func TestRequireDOCX(t *testing.T) {
	docx := zipOf(t, map[string]string{"word/document.xml": "<w:document/>"})
	if f, err := RequireDOCX(docx); err != nil || f != DOCX {
		t.Errorf("RequireDOCX(docx) = %v, %v", f, err)
	}

	docm := zipOf(t, map[string]string{"[Content_Types].xml": `<Types><Override PartName="/word/document.xml" ` +
		`ContentType="application/vnd.ms-word.document.macroEnabled.main+xml"/></Types>`})
	if f, err := RequireDOCX(docm); err != nil || f != DOCM {
		t.Errorf("RequireDOCX(docm) = %v, %v", f, err)
	}

	_, err := RequireDOCX([]byte("%PDF-1.4"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("RequireDOCX(pdf) = %v, want ErrUnsupported", err)
	}
	if want := "expected DOCX, got PDF"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %q", err, want)
	}
}
