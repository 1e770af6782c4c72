// Package pdf renders printable invoice documents with Maroto v2.
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

var (
	colorPrimary = &props.Color{Red: 13, Green: 71, Blue: 161}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// InvoiceLine is one billable row on the rendered document.
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// InvoiceDocument carries everything the renderer needs.
type InvoiceDocument struct {
	ClinicName     string
	ClinicAddress  string
	ClinicPhone    string
	CurrencySymbol string

	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Status        string

	PatientName  string
	PatientEmail string
	PatientPhone string

	Lines       []InvoiceLine
	TotalAmount decimal.Decimal
	Notes       string
}

// RenderInvoice produces the PDF bytes for an invoice.
func RenderInvoice(doc InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+doc.InvoiceNumber, true).
		WithAuthor(doc.ClinicName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clinicRow(doc))
	m.AddRows(patientRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(doc) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(doc))

	if doc.Notes != "" {
		m.AddRows(notesRows(doc)...)
	}

	rendered, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating invoice pdf: %w", err)
	}
	return rendered.GetBytes(), nil
}

func headerRow(doc InvoiceDocument) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(doc.ClinicName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(doc.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Issued: "+doc.IssueDate.Format("02 Jan 2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func clinicRow(doc InvoiceDocument) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("FROM", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   %s   |   %s",
				doc.ClinicName,
				nonEmpty(doc.ClinicAddress, "-"),
				nonEmpty(doc.ClinicPhone, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func patientRow(doc InvoiceDocument) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.PatientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Phone: %s",
				nonEmpty(doc.PatientEmail, "-"),
				nonEmpty(doc.PatientPhone, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Due: "+doc.DueDate.Format("02 Jan 2006"), props.Text{
				Size: 8, Align: align.Right, Top: 6, Color: colorGray,
			}),
			text.New("Status: "+doc.Status, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 11,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	header := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		header("Description", 6, align.Left),
		header("Qty", 1, align.Center),
		header("Unit Price", 2, align.Right),
		header("Total", 3, align.Right),
	)
}

func tableLineRows(doc InvoiceDocument) []core.Row {
	result := make([]core.Row, 0, len(doc.Lines))
	for _, item := range doc.Lines {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(
				item.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", item.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				doc.CurrencySymbol+item.UnitPrice.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				doc.CurrencySymbol+item.Total.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalRow(doc InvoiceDocument) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 2, Top: 2,
			}),
		),
		col.New(3).Add(
			text.New(doc.CurrencySymbol+doc.TotalAmount.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 1, Top: 2,
			}),
		),
	)
}

func notesRows(doc InvoiceDocument) []core.Row {
	return []core.Row{
		row.New(4),
		row.New(6).Add(col.New(12).Add(
			text.New("NOTES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(8).Add(col.New(12).Add(
			text.New(doc.Notes, props.Text{Size: 8, Color: colorGray, Top: 1}),
		)),
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
