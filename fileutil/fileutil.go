// Package fileutil provides pure helpers for file display and typing:
// size/date formatting, MIME inference from filenames, and thumbnail
// selection by extension.
package fileutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Extension returns the lowercase extension of filename without the dot,
// or "" if there is none.
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ContentType infers a MIME type from the filename extension.
func ContentType(filename string) string {
	switch Extension(filename) {
	case "pdf":
		return "application/pdf"
	case "txt", "md":
		return "text/plain"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "xls":
		return "application/vnd.ms-excel"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "svg":
		return "image/svg+xml"
	case "csv":
		return "text/csv"
	case "json":
		return "application/json"
	case "zip":
		return "application/zip"
	case "mp4":
		return "video/mp4"
	case "mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}

// Thumbnail picks a preview reference for the given file type (lowercase
// extension). Unknown types get the generic file thumbnail.
func Thumbnail(fileType string) string {
	switch fileType {
	case "pdf":
		return "/thumbnails/pdf.svg"
	case "doc", "docx":
		return "/thumbnails/word.svg"
	case "xls", "xlsx", "csv":
		return "/thumbnails/sheet.svg"
	case "png", "jpg", "jpeg", "gif", "svg":
		return "/thumbnails/image.svg"
	case "mp4", "mov", "avi":
		return "/thumbnails/video.svg"
	case "mp3", "wav", "flac":
		return "/thumbnails/audio.svg"
	case "zip", "tar", "gz":
		return "/thumbnails/archive.svg"
	case "txt", "md":
		return "/thumbnails/text.svg"
	default:
		return "/thumbnails/file.svg"
	}
}

// FormatSize renders a byte count in human-readable form (B, KB, MB, GB).
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMG"[exp])
}

// FormatDate renders a timestamp the way the file listing displays it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
