package openshelf

import (
	"fmt"
	"strings"
	"time"
)

// Format is the domain type for supported book file formats.
type Format string

// Format constants (typed).
const (
	FormatPDF  Format = "PDF"
	FormatEPUB Format = "EPUB"
)

// FormatForExtension maps a file extension (with leading dot, any case)
// to its Format. Unsupported extensions return ok=false; uploads with
// such extensions are rejected before any remote call.
func FormatForExtension(ext string) (Format, bool) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return FormatPDF, true
	case ".epub":
		return FormatEPUB, true
	default:
		return "", false
	}
}

// Book is one catalog entry. The File field is the relative path of the
// binary inside the store's file namespace and doubles as its content
// address; Size, Format and Color are derived at upload time.
type Book struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	Year        int       `json:"year,omitempty"`
	Language    string    `json:"language"`
	Description string    `json:"description,omitempty"`
	Size        string    `json:"size"`
	Format      Format    `json:"format"`
	File        string    `json:"file"`
	Color       string    `json:"color"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// DefaultColor is used for genres missing from the color table.
const DefaultColor = "#4a5568"

var genreColors = map[string]string{
	"fiction":         "#9c3d2e",
	"non-fiction":     "#2d5f8a",
	"science":         "#1f6f50",
	"science fiction": "#275e6e",
	"fantasy":         "#5a3e8e",
	"mystery":         "#31363b",
	"thriller":        "#6e2b3c",
	"romance":         "#b0486e",
	"history":         "#8a6d3b",
	"biography":       "#4a6741",
	"poetry":          "#7d5ba6",
	"philosophy":      "#3b6e8f",
}

// ColorForGenre returns the display color for a genre. Lookup is
// case-insensitive; unknown genres fall back to DefaultColor.
func ColorForGenre(genre string) string {
	if color, ok := genreColors[strings.ToLower(strings.TrimSpace(genre))]; ok {
		return color
	}
	return DefaultColor
}

// HumanSize renders a byte count as a human-readable string, e.g.
// "512 B", "1.5 KB", "3.2 MB".
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
