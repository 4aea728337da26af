package extract

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestExtract_PlainText(t *testing.T) {
	res := New(0, nil).Extract("cv.txt", "text/plain; charset=utf-8", strings.NewReader("Go developer, 5 years"))

	assert.Equal(t, "text/plain", res.ContentType)
	assert.Equal(t, "Go developer, 5 years", res.Text)
	assert.True(t, res.Decoded)
}

func TestExtract_SniffsWhenTypeMissing(t *testing.T) {
	res := New(0, nil).Extract("notes", "", strings.NewReader("just some notes\n"))

	assert.Equal(t, "text/plain", res.ContentType)
	assert.True(t, res.Decoded)
}

func TestExtract_PDFPlaceholder(t *testing.T) {
	res := New(0, nil).Extract("cv.pdf", "", bytes.NewReader([]byte("%PDF-1.7\n%âãÏÓ\n")))

	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, "[Uploaded file: cv.pdf - content will be processed by AI]", res.Text)
	assert.False(t, res.Decoded)
}

func TestExtract_ImagePlaceholder(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d}
	res := New(0, nil).Extract("me.png", "application/octet-stream", bytes.NewReader(png))

	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, "[Image uploaded: me.png]", res.Text)
}

func TestExtract_UnsupportedType(t *testing.T) {
	res := New(0, nil).Extract("data.csv", "text/csv", strings.NewReader("a,b\n1,2\n"))

	assert.Equal(t, "[Uploaded file type text/csv not fully supported for direct text extraction, "+
		"but will be used for personalization.]", res.Text)
}

func TestExtract_Errors(t *testing.T) {
	e := New(4, nil)

	assert.Equal(t, errorNote, e.Extract("big.txt", "text/plain", strings.NewReader("too long")).Text)
	assert.Equal(t, errorNote, e.Extract("x.txt", "text/plain", failingReader{}).Text)
	assert.Equal(t, errorNote, New(0, nil).Extract("bad.txt", "text/plain", bytes.NewReader([]byte{0xff, 0xfe, 0xfd})).Text)
}
