package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

type SourceFormat string

const (
	FormatTXT  SourceFormat = "txt"
	FormatPDF  SourceFormat = "pdf"
	FormatDOC  SourceFormat = "doc"
	FormatDOCX SourceFormat = "docx"
)

// RawDocument is an uploaded file held in memory for the length of one request.
type RawDocument struct {
	Key          string
	OriginalName string
	MimeType     string
	Size         int64
	Content      []byte
}

type ExtractedText struct {
	Content      string
	SourceFormat SourceFormat
	Length       int
}

type TextExtractor interface {
	Extract(ctx context.Context, doc RawDocument) (*ExtractedText, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// FormatForName maps a file name to its source format using only the extension.
func FormatForName(name string) (SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return FormatTXT, nil
	case ".pdf":
		return FormatPDF, nil
	case ".doc":
		return FormatDOC, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Extract implements TextExtractor.
func (e *textExtractor) Extract(ctx context.Context, doc RawDocument) (result *ExtractedText, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := FormatForName(doc.OriginalName)
	if err != nil {
		return nil, err
	}

	log.Printf("📄 Extracting text from %s (%s, %d bytes)\n", doc.OriginalName, format, len(doc.Content))

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %s reader panicked: %v", ErrExtractionFailed, strings.ToUpper(string(format)), r)
		}
	}()

	var text string
	switch format {
	case FormatTXT:
		text = string(bytes.TrimPrefix(doc.Content, []byte("\xef\xbb\xbf")))
	case FormatPDF:
		text, err = extractPDFText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to extract text from PDF: %v", ErrExtractionFailed, err)
		}
	case FormatDOC, FormatDOCX:
		text, err = extractDocxText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to extract text from DOC/DOCX: %v", ErrExtractionFailed, err)
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	return &ExtractedText{
		Content:      text,
		SourceFormat: format,
		Length:       len(text),
	}, nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("⚠️  Skipping PDF page %d: %v\n", pageIndex, err)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	log.Printf("📄 PDF pages: %d\n", totalPage)

	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty document")
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripDocumentXML(doc.Editable().GetContent()), nil
}

// stripDocumentXML keeps the character data of a word/document.xml body,
// ending a line at every paragraph or break.
func stripDocumentXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("⚠️  Document XML not well formed, keeping partial text: %v\n", err)
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
