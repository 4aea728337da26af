// Package extract turns uploaded documents into text that can be placed into a
// generation prompt. Only plain text is decoded; other formats become a short
// placeholder note.
package extract

import (
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pathwise/pathwise-hub/pkg/logger"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DefaultMaxBytes caps how much of an upload is read.
	DefaultMaxBytes = 5 << 20

	errorNote = "[Error reading file.]"
)

// Extractor converts uploads to prompt text.
type Extractor struct {
	maxBytes int64
	log      *logger.Logger
}

// New creates an Extractor. maxBytes <= 0 means DefaultMaxBytes.
func New(maxBytes int64, log *logger.Logger) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{maxBytes: maxBytes, log: log.With(logger.Component("extract"))}
}

// Result is the outcome of one extraction.
type Result struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Text        string `json:"text"`
	// Decoded is true when Text holds the file's own content.
	Decoded bool `json:"decoded"`
}

// Extract reads r and returns prompt text. contentType may be empty, in which
// case it is sniffed from the bytes. Extract never fails: read errors and
// oversized uploads become the error note.
func (e *Extractor) Extract(name, contentType string, r io.Reader) Result {
	res := Result{Name: name}

	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil || int64(len(data)) > e.maxBytes {
		e.log.Warn("upload read failed",
			logger.String("file", name),
			logger.Int("bytes", len(data)),
			logger.Err(err),
		)
		res.Text = errorNote
		return res
	}

	res.ContentType = e.resolveType(contentType, data)
	res.Text, res.Decoded = describe(name, res.ContentType, data)
	return res
}

// resolveType prefers the declared type unless it is missing or generic.
func (e *Extractor) resolveType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	detected := mimetype.Detect(data).String()
	if mt, _, err := mime.ParseMediaType(detected); err == nil {
		return mt
	}
	return detected
}

func describe(name, contentType string, data []byte) (string, bool) {
	switch {
	case contentType == mimeText:
		if !utf8.Valid(data) {
			return errorNote, false
		}
		return string(data), true
	case contentType == mimePDF || contentType == mimeDOCX:
		return fmt.Sprintf("[Uploaded file: %s - content will be processed by AI]", name), false
	case strings.HasPrefix(contentType, "image/"):
		return fmt.Sprintf("[Image uploaded: %s]", name), false
	default:
		return fmt.Sprintf("[Uploaded file type %s not fully supported for direct text extraction, "+
			"but will be used for personalization.]", contentType), false
	}
}
