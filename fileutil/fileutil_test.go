package fileutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     string
	}{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"notes.md", "md"},
		{"README", ""},
		{".gitignore", "gitignore"},
		{"weird.", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Extension(tt.filename))
		})
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/pdf", ContentType("a.pdf"))
	assert.Equal(t, "text/plain", ContentType("a.txt"))
	assert.Equal(t, "text/plain", ContentType("a.md"))
	assert.Equal(t, "image/jpeg", ContentType("photo.JPG"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ContentType("a.docx"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}

func TestThumbnail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/thumbnails/pdf.svg", Thumbnail("pdf"))
	assert.Equal(t, "/thumbnails/word.svg", Thumbnail("docx"))
	assert.Equal(t, "/thumbnails/sheet.svg", Thumbnail("csv"))
	assert.Equal(t, "/thumbnails/image.svg", Thumbnail("png"))
	assert.Equal(t, "/thumbnails/file.svg", Thumbnail("xyz"))
	assert.Equal(t, "/thumbnails/file.svg", Thumbnail(""))
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.size))
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Mar 5, 2024", FormatDate(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
}
