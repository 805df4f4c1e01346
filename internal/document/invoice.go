package document

import (
	"fmt"

	"github.com/avassel/stagebook/internal/model"
)

// InvoiceData gathers everything the invoice layout needs.  The
// billing address comes from the invoice's snapshot, never from the
// live customer profile.
type InvoiceData struct {
	Invoice         *model.Invoice
	Customer        *model.Customer
	Session         *model.Session
	Company         CompanyInfo
	VATRatePermille int
	Logo            *Asset
}

// BuildInvoice lays out the paid invoice as a block list ready for
// pagination.
func BuildInvoice(d InvoiceData) []Block {
	inv := d.Invoice
	blocks := []Block{
		Image{Asset: d.Logo, W: 40, H: 18, Gap: 4},
		TextLine{Text: "INVOICE " + inv.Number, Font: fontTitle, Gap: 1},
		TextLine{Text: "Issued on " + inv.IssuedAt.Format("02/01/2006"), Font: fontBody, Gap: 5},

		TextLine{Text: "Billed to:", Font: fontHeading, Gap: 1},
	}
	for _, line := range inv.Billing.Lines() {
		blocks = append(blocks, TextLine{Text: line, Font: fontBody})
	}
	blocks = append(blocks, Spacer{H: 6})

	vatPct := float64(d.VATRatePermille) / 10
	blocks = append(blocks,
		Table{
			Headers: []string{"Description", "Qty", "Unit price", "Amount"},
			Rows: [][]string{
				{
					fmt.Sprintf("Road-safety awareness course - session no. %s (%s to %s)",
						d.Session.Number,
						d.Session.StartDate.Format("02/01/2006"),
						d.Session.EndDate.Format("02/01/2006")),
					"1",
					formatEuros(inv.AmountCents),
					formatEuros(inv.AmountCents),
				},
			},
			ColWidths: []float64{0.55, 0.10, 0.175, 0.175},
			Font:      fontBody,
			Gap:       4,
		},
		totalsLine("Total excl. VAT", inv.NetCents),
		totalsLine(fmt.Sprintf("VAT (%.1f%%)", vatPct), inv.TaxCents),
		TextLine{Text: fmt.Sprintf("Total incl. VAT: %s", formatEuros(inv.AmountCents)), Font: fontBodyBold, Align: "R", Gap: 8},

		Paragraph{
			Text: "Invoice settled. This document serves as a receipt; no discount is " +
				"granted for early settlement.",
			Font: fontBody, Gap: 2,
		},
		Paragraph{
			Text: "In accordance with applicable law, any late-payment balance accrues " +
				"interest at the statutory rate plus a fixed recovery indemnity.",
			Font: fontSmall, Gap: 6,
		},
		Rule{},
		footerLine(d.Company),
	)
	return blocks
}

func totalsLine(label string, cents uint32) Block {
	return TextLine{
		Text:  fmt.Sprintf("%s: %s", label, formatEuros(cents)),
		Font:  fontBody,
		Align: "R",
	}
}

// formatEuros renders cents as a euro amount with a comma decimal
// separator, matching the documents' locale.
func formatEuros(cents uint32) string {
	return fmt.Sprintf("%d,%02d EUR", cents/100, cents%100)
}
