package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sonogrid/sonogrid/spectrogram"
	"github.com/sonogrid/sonogrid/spectrogram/config"
)

// TermRenderer draws grids as colored half-block cells for terminal
// preview. Each text row carries two grid rows: the upper half block's
// foreground is the top row, its background the bottom row.
type TermRenderer struct {
	cmap *spectrogram.Colormap
}

// NewTermRenderer creates a terminal renderer for the palette
func NewTermRenderer(palette config.PaletteType) (*TermRenderer, error) {
	cmap, err := spectrogram.NewColormap(palette)
	if err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}
	return &TermRenderer{cmap: cmap}, nil
}

// Render samples the grid down to cols columns and rows text rows and
// returns the styled lines joined by newlines. Dimensions clamp to at
// least one cell.
func (r *TermRenderer) Render(grid *spectrogram.Grid, cols, rows int) string {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	// Two grid rows per text row via the half block.
	srcRows := rows * 2

	var sb strings.Builder
	for row := range rows {
		for col := range cols {
			topY := sampleIndex(row*2, srcRows, grid.Height)
			botY := sampleIndex(row*2+1, srcRows, grid.Height)
			x := sampleIndex(col, cols, grid.Width)

			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(r.cmap.Map(grid.At(x, topY)).Hex())).
				Background(lipgloss.Color(r.cmap.Map(grid.At(x, botY)).Hex()))
			sb.WriteString(style.Render("▀"))
		}
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Legend returns one line of palette swatches from darkest to brightest
func (r *TermRenderer) Legend(width int) string {
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	for i := range width {
		t := 0.0
		if width > 1 {
			t = float64(i) / float64(width-1)
		}
		c := lipgloss.Color(r.cmap.Map(t).Hex())
		sb.WriteString(lipgloss.NewStyle().Foreground(c).Background(c).Render(" "))
	}
	return sb.String()
}

// sampleIndex maps output cell i of n onto a source axis of size size,
// nearest neighbor, clamped to the valid range
func sampleIndex(i, n, size int) int {
	if size <= 1 || n <= 1 {
		return 0
	}
	idx := int(float64(i)/float64(n-1)*float64(size-1) + 0.5)
	if idx >= size {
		idx = size - 1
	}
	return idx
}
