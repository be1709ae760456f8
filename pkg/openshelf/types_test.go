package openshelf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/openshelf/pkg/openshelf"
)

func TestFormatForExtension(t *testing.T) {
	tests := []struct {
		ext    string
		want   openshelf.Format
		wantOK bool
	}{
		{".pdf", openshelf.FormatPDF, true},
		{".PDF", openshelf.FormatPDF, true},
		{".epub", openshelf.FormatEPUB, true},
		{".EPUB", openshelf.FormatEPUB, true},
		{".mobi", "", false},
		{".txt", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, ok := openshelf.FormatForExtension(tt.ext)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorForGenre(t *testing.T) {
	assert.Equal(t, "#9c3d2e", openshelf.ColorForGenre("Fiction"))
	assert.Equal(t, "#9c3d2e", openshelf.ColorForGenre("fiction"))
	assert.Equal(t, "#9c3d2e", openshelf.ColorForGenre("  Fiction  "))
	assert.Equal(t, "#5a3e8e", openshelf.ColorForGenre("Fantasy"))
	assert.Equal(t, openshelf.DefaultColor, openshelf.ColorForGenre("Interpretive Dance"))
	assert.Equal(t, openshelf.DefaultColor, openshelf.ColorForGenre(""))
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, openshelf.HumanSize(tt.n))
		})
	}
}
