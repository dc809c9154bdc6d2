// Package document assembles the paginated photo appendix PDF from the
// resolved records and their optional rendered companion images.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/d-dboss/Worksite-Appendix-Creator/pkg/types"
)

// Entry pairs one record with the rendered companion images for it, when
// available. Empty paths mean "no image".
type Entry struct {
	Record      types.PhotoRecord
	MapPath     string
	CompassPath string
}

const (
	pageMargin   = 25.4 // 1 inch
	captionSize  = 10.0
	companionRow = 32.0 // height reserved for the map/compass strip
)

// Create writes the appendix PDF. imagesPerPage must be 1, 2 or 4.
// A photo whose image cannot be embedded gets a red note in its slot; the
// document is still produced.
func Create(entries []Entry, outputPath string, imagesPerPage int) error {
	switch imagesPerPage {
	case 1, 2, 4:
	default:
		imagesPerPage = 2
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Photo Appendix", false)
	pdf.SetAuthor("Worksite Appendix Creator", false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	addTitlePage(pdf)

	pageW, pageH := pdf.GetPageSize()
	usableW := pageW - 2*pageMargin
	usableH := pageH - 2*pageMargin

	for i, entry := range entries {
		slot := i % imagesPerPage
		if slot == 0 {
			pdf.AddPage()
		}

		x, y, w, h := slotRect(slot, imagesPerPage, usableW, usableH)
		drawEntry(pdf, tr, entry, x, y, w, h)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func addTitlePage(pdf *fpdf.Fpdf) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Photo Appendix", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, "This document contains photos and their associated metadata.", "", 1, "C", false, 0, "")
}

// slotRect returns the content rectangle for a slot index at the given
// density: one full-page slot, two stacked slots, or a 2x2 grid.
func slotRect(slot, imagesPerPage int, usableW, usableH float64) (x, y, w, h float64) {
	switch imagesPerPage {
	case 1:
		return pageMargin, pageMargin, usableW, usableH
	case 2:
		h = usableH / 2
		return pageMargin, pageMargin + float64(slot)*h, usableW, h
	default: // 4
		w = usableW / 2
		h = usableH / 2
		col := slot % 2
		row := slot / 2
		return pageMargin + float64(col)*w, pageMargin + float64(row)*h, w, h
	}
}

func drawEntry(pdf *fpdf.Fpdf, tr func(string) string, entry Entry, x, y, w, h float64) {
	rec := entry.Record

	const pad = 3.0
	x, y = x+pad, y+pad
	w, h = w-2*pad, h-2*pad

	captionH := 10.0
	imageH := h - captionH
	if entry.MapPath != "" || entry.CompassPath != "" {
		imageH -= companionRow
	}

	imagePath := rec.SourcePath
	if rec.NormalizedCopyPath != "" {
		imagePath = rec.NormalizedCopyPath
	}

	drawnH, ok := placeImage(pdf, imagePath, rec.Width, rec.Height, x, y, w, imageH)
	if !ok {
		pdf.SetXY(x, y+4)
		pdf.SetFont("Helvetica", "I", captionSize)
		pdf.SetTextColor(255, 0, 0)
		pdf.MultiCell(w, 5, tr("Error adding image: "+rec.DisplayName), "", "C", false)
		pdf.SetTextColor(0, 0, 0)
		drawnH = 14
	}

	cursorY := y + drawnH + 2

	caption := rec.Caption
	if caption == "" {
		caption = "No caption available"
	}
	pdf.SetXY(x, cursorY)
	pdf.SetFont("Helvetica", "", captionSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(w, 5, tr(caption), "", "C", false)
	cursorY = pdf.GetY() + 2

	if entry.MapPath != "" || entry.CompassPath != "" {
		drawCompanions(pdf, entry, x, cursorY, w)
	}
}

// placeImage embeds the image scaled into a w x maxH box, preserving
// aspect ratio, centered horizontally. Returns the drawn height.
func placeImage(pdf *fpdf.Fpdf, path string, pxW, pxH int, x, y, w, maxH float64) (float64, bool) {
	if maxH < 10 {
		maxH = 10
	}
	if !embeddable(path) {
		return 0, false
	}
	if _, err := os.Stat(path); err != nil {
		return 0, false
	}

	// Fall back to 4:3 when dimensions were not resolved.
	aspect := 3.0 / 4.0
	if pxW > 0 && pxH > 0 {
		aspect = float64(pxH) / float64(pxW)
	}

	drawW := w
	drawH := drawW * aspect
	if drawH > maxH {
		drawH = maxH
		drawW = drawH / aspect
	}
	drawX := x + (w-drawW)/2

	pdf.ImageOptions(path, drawX, y, drawW, drawH, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	if pdf.Err() {
		// Reset so the rest of the document can still be written.
		pdf.ClearError()
		return 0, false
	}
	return drawH, true
}

func drawCompanions(pdf *fpdf.Fpdf, entry Entry, x, y, w float64) {
	const mapW = 42.0
	const compassW = 26.0

	cursorX := x + (w-mapW-compassW-4)/2
	if entry.MapPath != "" {
		pdf.ImageOptions(entry.MapPath, cursorX, y, mapW, mapW*0.7, false, fpdf.ImageOptions{}, 0, "")
		cursorX += mapW + 4
	}
	if entry.CompassPath != "" {
		pdf.ImageOptions(entry.CompassPath, cursorX, y, compassW, compassW, false, fpdf.ImageOptions{}, 0, "")
	}
	if pdf.Err() {
		pdf.ClearError()
	}
}

func embeddable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	default:
		return false
	}
}
