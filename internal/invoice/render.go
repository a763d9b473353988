package invoice

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/ecomitechltd/ZINEB/internal/obs"
)

// FormatMoney renders cents as dollars with exactly two decimals, e.g. 800 -> "$8.00".
func FormatMoney(cents int64) string {
	return "$" + decimal.New(cents, -2).StringFixed(2)
}

// Render lays out and serialises the invoice for order.
func Render(order Order, business Business) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, order, business); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write lays out the invoice for order and writes the PDF to w.
func Write(w io.Writer, order Order, business Business) error {
	doc, err := Layout(order, business)
	if err != nil {
		obs.IncDomain(obs.InvoiceRenderTotal, "error")
		return err
	}
	if err := WriteDocument(w, doc); err != nil {
		obs.IncDomain(obs.InvoiceRenderTotal, "error")
		return err
	}
	obs.IncDomain(obs.InvoiceRenderTotal, "ok")
	return nil
}

// WriteDocument serialises a laid out document. Creation and modification dates are
// pinned to the document date so identical documents produce identical bytes.
func WriteDocument(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.Date)
	pdf.SetModificationDate(doc.Date)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	pdf.SetCreator("esimfly", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, el := range doc.Elements {
		switch el.Kind {
		case KindRect:
			pdf.SetFillColor(el.Color.R, el.Color.G, el.Color.B)
			pdf.Rect(el.X, el.Y, el.W, el.H, "F")
		case KindRoundedRect:
			pdf.SetFillColor(el.Color.R, el.Color.G, el.Color.B)
			pdf.RoundedRect(el.X, el.Y, el.W, el.H, el.Radius, "1234", "F")
		case KindLine:
			pdf.SetDrawColor(el.Color.R, el.Color.G, el.Color.B)
			pdf.SetLineWidth(0.5)
			pdf.Line(el.X, el.Y, el.X2, el.Y2)
		case KindText:
			style := ""
			if el.Bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, el.Size)
			pdf.SetTextColor(el.Color.R, el.Color.G, el.Color.B)
			txt := tr(el.Text)
			x := el.X
			if el.Align == AlignCenter {
				x -= pdf.GetStringWidth(txt) / 2
			}
			pdf.Text(x, el.Y, txt)
		default:
			return fmt.Errorf("invoice: unknown element kind %d", el.Kind)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoice: write pdf: %w", err)
	}
	return nil
}
