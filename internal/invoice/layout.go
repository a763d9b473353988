// Package invoice lays out and renders single-order PDF invoices.
package invoice

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrIncompleteOrder is returned when an order lacks fields the template needs.
var ErrIncompleteOrder = errors.New("invoice: order is missing required fields")

// Order is the persisted order data an invoice is built from. Money is in cents.
type Order struct {
	ID            string
	CreatedAt     time.Time
	CustomerName  string
	CustomerEmail string
	Country       string
	PlanName      string
	DataAmount    string
	Validity      int
	Total         int64
	Discount      int64
	PromoCode     string
	Status        string
}

// Subtotal is the pre-discount amount.
func (o Order) Subtotal() int64 {
	return o.Total + o.Discount
}

// Business holds the seller identity printed on the invoice. Empty fields use defaults.
type Business struct {
	Name    string
	Address string
	Email   string
	Phone   string
	VAT     string
}

const (
	DefaultBusinessName    = "eSIMFly"
	DefaultBusinessAddress = "123 Digital Street\nLondon, UK EC1A 1BB"
	DefaultBusinessEmail   = "support@esimfly.me"
)

func (b Business) withDefaults() Business {
	if strings.TrimSpace(b.Name) == "" {
		b.Name = DefaultBusinessName
	}
	if strings.TrimSpace(b.Address) == "" {
		b.Address = DefaultBusinessAddress
	}
	if strings.TrimSpace(b.Email) == "" {
		b.Email = DefaultBusinessEmail
	}
	return b
}

// Kind identifies a drawing primitive.
type Kind int

const (
	KindText Kind = iota
	KindRect
	KindRoundedRect
	KindLine
)

// Align controls horizontal text placement relative to X.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Color is an RGB triple.
type Color struct{ R, G, B int }

var (
	colorPrimary    = Color{79, 70, 229}
	colorText       = Color{26, 26, 26}
	colorGray       = Color{102, 102, 102}
	colorLightGray  = Color{200, 200, 200}
	colorWhite      = Color{255, 255, 255}
	colorTableFill  = Color{248, 249, 250}
	colorDiscount   = Color{34, 197, 94}
	colorBadgeOK    = Color{220, 252, 231}
	colorBadgeOKTxt = Color{22, 163, 74}
	colorBadgeWait  = Color{254, 243, 199}
	colorWaitTxt    = Color{180, 83, 9}
	colorBadgeBad   = Color{254, 226, 226}
	colorBadTxt     = Color{220, 38, 38}
)

// Element is one positioned primitive in millimetres on an A4 page.
type Element struct {
	Kind   Kind
	X, Y   float64
	W, H   float64
	X2, Y2 float64
	Radius float64
	Text   string
	Align  Align
	Bold   bool
	Size   float64
	Color  Color
}

// Document is the complete layout of an invoice.
type Document struct {
	Title    string
	Author   string
	Date     time.Time
	Elements []Element
}

// Texts returns every text element in drawing order.
func (d Document) Texts() []string {
	out := make([]string, 0, len(d.Elements))
	for _, el := range d.Elements {
		if el.Kind == KindText {
			out = append(out, el.Text)
		}
	}
	return out
}

// Number returns the invoice number: the last 8 characters of the order id, upper-cased.
func Number(orderID string) string {
	if len(orderID) > 8 {
		orderID = orderID[len(orderID)-8:]
	}
	return strings.ToUpper(orderID)
}

// Filename is the download name for an order's invoice.
func Filename(orderID string) string {
	id := orderID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return "invoice-" + id + ".pdf"
}

// FormatDate renders t as "January 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

type builder struct {
	els []Element
}

func (b *builder) text(x, y float64, size float64, bold bool, c Color, s string) {
	b.els = append(b.els, Element{Kind: KindText, X: x, Y: y, Size: size, Bold: bold, Color: c, Text: s})
}

func (b *builder) centered(x, y float64, size float64, bold bool, c Color, s string) {
	b.els = append(b.els, Element{Kind: KindText, X: x, Y: y, Size: size, Bold: bold, Color: c, Text: s, Align: AlignCenter})
}

func (b *builder) rect(x, y, w, h float64, c Color) {
	b.els = append(b.els, Element{Kind: KindRect, X: x, Y: y, W: w, H: h, Color: c})
}

func (b *builder) line(x1, y1, x2, y2 float64) {
	b.els = append(b.els, Element{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2, Color: colorLightGray})
}

// Layout places every element of the invoice template. It is pure: the same order
// and business always produce the same document.
func Layout(order Order, business Business) (Document, error) {
	if strings.TrimSpace(order.ID) == "" || order.CreatedAt.IsZero() || strings.TrimSpace(order.CustomerEmail) == "" {
		return Document{}, ErrIncompleteOrder
	}
	biz := business.withDefaults()
	customer := strings.TrimSpace(order.CustomerName)
	if customer == "" {
		customer = "Customer"
	}
	number := Number(order.ID)

	var b builder

	// header band
	b.rect(0, 0, 210, 45, colorPrimary)
	b.text(20, 28, 28, true, colorWhite, biz.Name)
	b.text(170, 20, 10, false, colorWhite, "INVOICE")
	b.text(170, 27, 10, false, colorWhite, "#"+number)
	b.text(170, 34, 10, false, colorWhite, FormatDate(order.CreatedAt))

	// company block
	y := 60.0
	b.text(20, y, 9, false, colorGray, biz.Name)
	lines := strings.Split(biz.Address, "\n")
	for i, line := range lines {
		b.text(20, y+5+float64(i)*5, 9, false, colorGray, strings.TrimSpace(line))
	}
	y += 5 + float64(len(lines))*5
	b.text(20, y, 9, false, colorGray, biz.Email)
	y += 5
	if phone := strings.TrimSpace(biz.Phone); phone != "" {
		b.text(20, y, 9, false, colorGray, phone)
		y += 5
	}
	if vat := strings.TrimSpace(biz.VAT); vat != "" {
		b.text(20, y, 9, false, colorGray, "VAT: "+vat)
	}

	// bill to
	b.text(120, 60, 10, true, colorText, "BILL TO")
	b.text(120, 67, 10, false, colorGray, customer)
	b.text(120, 74, 10, false, colorGray, order.CustomerEmail)

	b.line(20, 100, 190, 100)

	// line item table
	b.rect(20, 109, 170, 12, colorTableFill)
	for _, col := range []struct {
		x    float64
		name string
	}{{25, "DESCRIPTION"}, {120, "QTY"}, {145, "PRICE"}, {170, "AMOUNT"}} {
		b.text(col.x, 115, 9, true, colorText, col.name)
	}
	subtotal := FormatMoney(order.Subtotal())
	b.text(25, 135, 10, false, colorText, strings.TrimSpace(order.Country+" eSIM"))
	b.text(25, 140, 8, false, colorGray, order.PlanName)
	b.text(25, 145, 8, false, colorGray, order.DataAmount+" - "+strconv.Itoa(order.Validity)+" days")
	b.text(125, 135, 10, false, colorText, "1")
	b.text(145, 135, 10, false, colorText, subtotal)
	b.text(170, 135, 10, false, colorText, subtotal)

	// totals
	b.line(120, 170, 190, 170)
	y = 182
	b.text(120, y, 9, false, colorGray, "Subtotal")
	b.text(170, y, 9, false, colorText, subtotal)
	if order.Discount > 0 {
		y += 10
		label := "Discount"
		if promo := strings.TrimSpace(order.PromoCode); promo != "" {
			label += " (" + promo + ")"
		}
		b.text(120, y, 9, false, colorDiscount, label)
		b.text(170, y, 9, false, colorDiscount, "-"+FormatMoney(order.Discount))
	}
	y += 15
	b.line(120, y-5, 190, y-5)
	b.text(120, y+3, 12, true, colorText, "Total")
	b.text(165, y+3, 12, true, colorPrimary, FormatMoney(order.Total))

	// status badge
	y += 25
	status, fill, fg := badge(order.Status)
	b.els = append(b.els, Element{Kind: KindRoundedRect, X: 120, Y: y - 5, W: 70, H: 15, Radius: 3, Color: fill})
	b.centered(155, y+3, 10, true, fg, status)

	// footer
	b.line(20, 260, 190, 260)
	b.centered(105, 268, 8, false, colorGray, "Thank you for choosing "+biz.Name+"!")
	b.centered(105, 274, 8, false, colorGray, "For support, email "+biz.Email)

	return Document{
		Title:    "Invoice #" + number,
		Author:   biz.Name,
		Date:     order.CreatedAt,
		Elements: b.els,
	}, nil
}

func badge(status string) (string, Color, Color) {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case "", "PAID", "COMPLETED":
		if status == "" {
			status = "PAID"
		}
		return status, colorBadgeOK, colorBadgeOKTxt
	case "PENDING":
		return status, colorBadgeWait, colorWaitTxt
	default:
		return status, colorBadgeBad, colorBadTxt
	}
}
