package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"chatportal/pkg/models"
)

// renderPDF builds a Letter-sized document: title block, optional summary
// paragraph, then a role heading and content paragraph per message.
func renderPDF(c models.Conversation, msgs []models.Message) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 9, c.Title, "", "L", false)
	doc.Ln(4)

	if c.Summary != "" {
		doc.SetFont("Helvetica", "B", 11)
		doc.MultiCell(0, 6, "Summary:", "", "L", false)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, c.Summary, "", "L", false)
		doc.Ln(6)
	}

	for _, m := range msgs {
		doc.SetFont("Helvetica", "B", 13)
		doc.MultiCell(0, 7, roleHeading(m.Role)+":", "", "L", false)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, m.Content, "", "L", false)
		doc.Ln(4)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
