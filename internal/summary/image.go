// Package summary renders the admin "Generate Reports" export: a PNG with
// the statistics snapshot and a table of complaints.
package summary

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"roadfix/internal/complaint"
)

// Table styling constants, rendered at 2x scale for clarity when shared
const (
	cellPaddingX  = 20
	cellPaddingY  = 16
	minRowHeight  = 76
	headerHeight  = 88
	fontSize      = 26
	headerFontSz  = 26
	titleFontSz   = 40
	titlePadding  = 110
	statsHeight   = 120
	footerPadding = 80
	minColWidth   = 110
	maxLocWidth   = 360.0
	maxDescWidth  = 440.0
)

// Light theme colors
var (
	bgColor         = color.RGBA{R: 245, G: 247, B: 250, A: 255} // Light gray bg
	titleColor      = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	headerBgColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}   // Blue
	headerTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowEvenColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowOddColor     = color.RGBA{R: 241, G: 245, B: 249, A: 255} // Subtle blue-gray
	textColor       = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	borderColor     = color.RGBA{R: 203, G: 213, B: 225, A: 255} // Slate border
	footerColor     = color.RGBA{R: 100, G: 116, B: 139, A: 255} // Muted slate
	cardColor       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// statusColors tint the status column.
var statusColors = map[complaint.Status]color.RGBA{
	complaint.StatusPending:  {R: 217, G: 119, B: 6, A: 255},
	complaint.StatusAssigned: {R: 37, G: 99, B: 235, A: 255},
	complaint.StatusResolved: {R: 22, G: 163, B: 74, A: 255},
}

// column definition for the table.
type column struct {
	header   string
	field    func(c *complaint.Complaint) string
	maxWidth float64 // 0 means auto
}

// columns defines the table layout.
var columns = []column{
	{"ID", func(c *complaint.Complaint) string { return "#" + string(c.ID) }, 0},
	{"Reporter", func(c *complaint.Complaint) string { return c.ReporterName }, 0},
	{"Location", func(c *complaint.Complaint) string { return c.Location }, maxLocWidth},
	{"Description", func(c *complaint.Complaint) string { return truncate(c.Description, 160) }, maxDescWidth},
	{"Priority", func(c *complaint.Complaint) string { return string(c.Priority) }, 0},
	{"Status", func(c *complaint.Complaint) string { return string(c.Status) }, 0},
	{"Assigned To", func(c *complaint.Complaint) string { return c.AssigneeLabel() }, 0},
	{"Date", func(c *complaint.Complaint) string { return c.Date }, 0},
}

// statusColumn is the index of the "Status" column.
const statusColumn = 5

// findFont locates a font file across Linux and Windows paths.
//
// Returns "" when no system font is installed.
func findFont(bold bool) string {
	var candidates []string
	if runtime.GOOS == "windows" {
		winRoot := os.Getenv("WINDIR")
		if winRoot == "" {
			winRoot = `C:\Windows`
		}
		if bold {
			candidates = []string{winRoot + `\Fonts\arialbd.ttf`, winRoot + `\Fonts\Arial Bold.ttf`}
		} else {
			candidates = []string{winRoot + `\Fonts\arial.ttf`, winRoot + `\Fonts\Arial.ttf`}
		}
	} else {
		if bold {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			}
		} else {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
			}
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFace returns a font face at size, preferring DejaVu/Arial (wider
// Unicode coverage for Marathi names) and falling back to the bundled Go
// fonts.
func loadFace(bold bool, size float64) (font.Face, error) {
	if path := findFont(bold); path != "" {
		if face, err := gg.LoadFontFace(path, size); err == nil {
			return face, nil
		}
	}
	ttf := goregular.TTF
	if bold {
		ttf = gobold.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundled font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// faces holds every face the renderer needs.
type faces struct {
	title, header, regular, footer, statNum font.Face
}

func loadFaces() (*faces, error) {
	var f faces
	var err error
	if f.title, err = loadFace(true, titleFontSz); err != nil {
		return nil, err
	}
	if f.header, err = loadFace(true, headerFontSz); err != nil {
		return nil, err
	}
	if f.statNum, err = loadFace(true, 36); err != nil {
		return nil, err
	}
	if f.regular, err = loadFace(false, fontSize); err != nil {
		return nil, err
	}
	if f.footer, err = loadFace(false, 24); err != nil {
		return nil, err
	}
	return &f, nil
}

// wrapText splits text into multiple lines to fit within maxWidth.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)

	if maxWidth <= 0 {
		return []string{text}
	}

	w, _ := dc.MeasureString(text)
	if w <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	currentLine := words[0]

	for _, word := range words[1:] {
		testLine := currentLine + " " + word
		tw, _ := dc.MeasureString(testLine)
		if tw > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine = testLine
		}
	}
	lines = append(lines, currentLine)
	return lines
}

// computeRowHeights calculates the height of each row based on wrapped text.
func computeRowHeights(dc *gg.Context, complaints []complaint.Complaint, colWidths []float64) []float64 {
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4

	heights := make([]float64, len(complaints))
	for rowIdx := range complaints {
		c := &complaints[rowIdx]
		maxLines := 1
		for i, col := range columns {
			innerWidth := colWidths[i] - cellPaddingX*2
			wrapped := wrapText(dc, col.field(c), innerWidth)
			if len(wrapped) > maxLines {
				maxLines = len(wrapped)
			}
		}
		h := float64(maxLines)*lineSpacing + cellPaddingY*2
		if h < float64(minRowHeight) {
			h = float64(minRowHeight)
		}
		heights[rowIdx] = h
	}
	return heights
}

// statCards lists the snapshot numbers drawn above the table.
func statCards(s complaint.Stats) []struct {
	label string
	value int
} {
	return []struct {
		label string
		value int
	}{
		{"Total", s.Total},
		{"Pending", s.Pending},
		{"Assigned", s.Assigned},
		{"Resolved", s.Resolved},
		{"High Priority", s.HighPriority},
		{"With Photos", s.WithPhotos},
	}
}

// RenderReport renders the stats snapshot and complaints table as PNG.
//
// Complaints are copied and sorted by status (Pending first) then date, so
// the caller's slice is left untouched.
//
// Parameters:
//   - complaints: rows of the table, may be empty
//   - stats: server snapshot for the header cards
//   - now: timestamp printed in the title
func RenderReport(complaints []complaint.Complaint, stats complaint.Stats, now time.Time) ([]byte, error) {
	rows := append([]complaint.Complaint(nil), complaints...)
	rank := map[complaint.Status]int{complaint.StatusPending: 0, complaint.StatusAssigned: 1, complaint.StatusResolved: 2}
	sort.SliceStable(rows, func(i, j int) bool {
		if rank[rows[i].Status] != rank[rows[j].Status] {
			return rank[rows[i].Status] < rank[rows[j].Status]
		}
		return rows[i].Date < rows[j].Date
	})

	f, err := loadFaces()
	if err != nil {
		return nil, err
	}

	// ---- Step 1: Measure column widths ----
	tmpDC := gg.NewContext(1, 1)
	tmpDC.SetFontFace(f.header)

	colWidths := make([]float64, len(columns))
	for i, col := range columns {
		w, _ := tmpDC.MeasureString(col.header)
		colWidths[i] = w + cellPaddingX*2 + 4
		if colWidths[i] < float64(minColWidth) {
			colWidths[i] = float64(minColWidth)
		}
	}

	// Measure data widths (capped by maxWidth)
	tmpDC.SetFontFace(f.regular)
	for rowIdx := range rows {
		c := &rows[rowIdx]
		for i, col := range columns {
			w, _ := tmpDC.MeasureString(col.field(c))
			needed := w + cellPaddingX*2 + 4
			if needed > colWidths[i] {
				colWidths[i] = needed
			}
		}
	}

	// Apply max width caps
	for i, col := range columns {
		if col.maxWidth > 0 && colWidths[i] > col.maxWidth {
			colWidths[i] = col.maxWidth
		}
	}

	rowHeights := computeRowHeights(tmpDC, rows, colWidths)

	// ---- Step 2: Calculate canvas size ----
	var totalWidth float64
	for _, w := range colWidths {
		totalWidth += w
	}

	var totalRowHeight float64
	for _, h := range rowHeights {
		totalRowHeight += h
	}
	if len(rows) == 0 {
		totalRowHeight = minRowHeight
	}

	canvasWidth := totalWidth + 80 // 40px margin each side
	canvasHeight := float64(titlePadding) +
		float64(statsHeight) +
		float64(headerHeight) +
		totalRowHeight +
		float64(footerPadding)

	// ---- Step 3: Draw ----
	dc := gg.NewContext(int(canvasWidth), int(canvasHeight))

	dc.SetColor(bgColor)
	dc.Clear()

	// Title
	dc.SetFontFace(f.title)
	dc.SetColor(titleColor)
	title := fmt.Sprintf("Road Complaints Report  —  %s", now.Format("02 Jan 2006, 03:04 PM"))
	dc.DrawStringAnchored(title, canvasWidth/2, float64(titlePadding)/2+2, 0.5, 0.5)

	tableX := 40.0

	// Stat cards
	cards := statCards(stats)
	gap := 16.0
	cardW := (totalWidth - gap*float64(len(cards)-1)) / float64(len(cards))
	cardY := float64(titlePadding)
	for i, card := range cards {
		cx := tableX + float64(i)*(cardW+gap)
		dc.SetColor(cardColor)
		dc.DrawRoundedRectangle(cx, cardY, cardW, statsHeight-24, 12)
		dc.Fill()

		dc.SetFontFace(f.statNum)
		dc.SetColor(titleColor)
		dc.DrawStringAnchored(fmt.Sprintf("%d", card.value), cx+cardW/2, cardY+36, 0.5, 0.5)
		dc.SetFontFace(f.footer)
		dc.SetColor(footerColor)
		dc.DrawStringAnchored(card.label, cx+cardW/2, cardY+76, 0.5, 0.5)
	}

	tableY := float64(titlePadding) + float64(statsHeight)

	// Header row background (rounded top corners)
	dc.SetColor(headerBgColor)
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, float64(headerHeight), 16)
	dc.Fill()

	// Header text
	dc.SetFontFace(f.header)
	dc.SetColor(headerTextColor)
	x := tableX
	for i, col := range columns {
		dc.DrawStringAnchored(col.header, x+colWidths[i]/2, tableY+float64(headerHeight)/2, 0.5, 0.5)
		x += colWidths[i]
	}

	// Data rows
	dc.SetFontFace(f.regular)
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4
	curY := tableY + float64(headerHeight)

	if len(rows) == 0 {
		dc.SetColor(rowEvenColor)
		dc.DrawRectangle(tableX, curY, totalWidth, minRowHeight)
		dc.Fill()
		dc.SetColor(footerColor)
		dc.DrawStringAnchored("No complaints", tableX+totalWidth/2, curY+minRowHeight/2, 0.5, 0.5)
	}

	for rowIdx := range rows {
		c := &rows[rowIdx]
		rh := rowHeights[rowIdx]

		// Alternating row background
		if rowIdx%2 == 0 {
			dc.SetColor(rowEvenColor)
		} else {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(tableX, curY, totalWidth, rh)
		dc.Fill()

		// Row border (bottom)
		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(tableX, curY+rh, tableX+totalWidth, curY+rh)
		dc.Stroke()

		x := tableX
		for i, col := range columns {
			if i == statusColumn {
				dc.SetColor(statusColors[c.Status])
			} else {
				dc.SetColor(textColor)
			}
			innerWidth := colWidths[i] - cellPaddingX*2
			wrapped := wrapText(dc, col.field(c), innerWidth)

			totalTextH := float64(len(wrapped)) * lineSpacing
			startY := curY + (rh-totalTextH)/2 + lineH // vertically center

			for lineIdx, line := range wrapped {
				dc.DrawString(line, x+cellPaddingX, startY+float64(lineIdx)*lineSpacing)
			}
			x += colWidths[i]
		}

		curY += rh
	}

	// Outer table border
	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	totalTableH := float64(headerHeight) + totalRowHeight
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, totalTableH, 16)
	dc.Stroke()

	// Vertical column borders
	if len(rows) > 0 {
		dc.SetLineWidth(0.5)
		x = tableX
		for i := 0; i < len(columns)-1; i++ {
			x += colWidths[i]
			dc.DrawLine(x, tableY+float64(headerHeight), x, tableY+totalTableH)
			dc.Stroke()
		}
	}

	// Footer
	dc.SetFontFace(f.footer)
	dc.SetColor(footerColor)
	footer := fmt.Sprintf("Total: %d complaints  ·  %d pending  ·  %d resolved", len(rows), stats.Pending, stats.Resolved)
	dc.DrawStringAnchored(footer, canvasWidth/2, canvasHeight-30, 0.5, 0.5)

	// ---- Step 4: Encode to PNG ----
	return encodeImage(dc.Image())
}

// Export renders the report and writes it to dir.
//
// Returns the path of the written file.
func Export(dir string, complaints []complaint.Complaint, stats complaint.Stats, now time.Time) (string, error) {
	data, err := RenderReport(complaints, stats, now)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("roadfix-report-%s.png", now.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		return string(runes[:maxLen]) + "…"
	}
	return s
}
