// Package checklistpdf renders tasks as a printable checklist.
package checklistpdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jung-kurt/gofpdf"
)

const (
	boxSize    = 4.0
	lineHeight = 8.0
	margin     = 15.0
)

// Render writes an A4 PDF listing tasks in order, with a ticked box for each
// completed task.
func Render(w io.Writer, title string, tasks []tasksrepo.Task, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")

	done := 0
	for _, t := range tasks {
		if t.IsCompleted {
			done++
		}
	}
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(110, 110, 110)
	summary := fmt.Sprintf("%d of %d done - %s", done, len(tasks), generatedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 6, summary, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	if len(tasks) == 0 {
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, lineHeight, "Nothing to do.", "", 1, "L", false, 0, "")
	}

	width, height := pdf.GetPageSize()
	textWidth := width - 2*margin - boxSize - 4
	for _, t := range tasks {
		if pdf.GetY()+lineHeight > height-margin {
			pdf.AddPage()
		}
		x, y := pdf.GetX(), pdf.GetY()
		boxY := y + (lineHeight-boxSize)/2

		pdf.SetDrawColor(40, 40, 40)
		pdf.Rect(x, boxY, boxSize, boxSize, "D")
		if t.IsCompleted {
			pdf.SetLineWidth(0.4)
			pdf.Line(x+0.8, boxY+boxSize/2, x+boxSize/2.5, boxY+boxSize-0.8)
			pdf.Line(x+boxSize/2.5, boxY+boxSize-0.8, x+boxSize-0.6, boxY+0.6)
			pdf.SetLineWidth(0.2)
			pdf.SetTextColor(130, 130, 130)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		pdf.SetX(x + boxSize + 4)
		pdf.MultiCell(textWidth, lineHeight, tr(t.Title), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render checklist: %w", err)
	}
	return nil
}
