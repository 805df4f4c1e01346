package document

import (
	"fmt"
	"time"

	"github.com/avassel/stagebook/internal/model"
)

// ConvocationData gathers everything the convocation layout needs.
// The logo may be nil when the asset failed to load or none is
// configured; the document renders without it.
type ConvocationData struct {
	Customer  *model.Customer
	Session   *model.Session
	StageType model.StageType
	Company   CompanyInfo
	IssueDate time.Time
	Logo      *Asset
}

// requiredDocuments returns the contents of the conditional
// required-documents box.  The four regulatory cases are mutually
// exclusive: case 1 lists two documents, cases 2 to 4 list three, and
// the box reserves exactly that many lines.
func requiredDocuments(t model.StageType) []string {
	switch t {
	case model.StageProbationary:
		return []string{
			"- the referral letter received for your probationary permit (ref. 48N)",
			"- a valid identity document",
			"- this convocation",
		}
	case model.StageProsecution:
		return []string{
			"- the notice issued by the public prosecutor",
			"- a valid identity document",
			"- this convocation",
		}
	case model.StageCourtOrdered:
		return []string{
			"- the court decision ordering your attendance",
			"- a valid identity document",
			"- this convocation",
		}
	default: // voluntary attendance
		return []string{
			"- a valid identity document",
			"- this convocation",
		}
	}
}

// caseParagraphs are the four fixed boilerplate paragraphs describing
// each regulatory case.  All four always appear so the trainee can
// identify their own situation.
var caseParagraphs = []string{
	"Case 1 - Voluntary attendance: you registered on your own initiative to recover " +
		"points on your driving licence. Attendance entitles you to a credit of points " +
		"within the legal limit, at most once every two years.",
	"Case 2 - Probationary permit: you received a referral letter (ref. 48N) after " +
		"offences committed during the probationary period. Attendance is mandatory " +
		"within four months of receiving the letter and entitles you to reimbursement " +
		"of the fixed fine.",
	"Case 3 - Alternative to prosecution: the public prosecutor offered this course " +
		"in lieu of prosecution. Attendance within the notified deadline extinguishes " +
		"the public action; no points are credited.",
	"Case 4 - Complementary sentence: a court ordered your attendance as a " +
		"complementary sentence. Attendance within the deadline set by the judgment " +
		"is mandatory; no points are credited.",
}

// BuildConvocation lays out the attendance convocation as a block
// list ready for pagination.
func BuildConvocation(d ConvocationData) []Block {
	blocks := []Block{
		Image{Asset: d.Logo, W: 40, H: 18, Gap: 4},
		TextLine{Text: "Issued on " + d.IssueDate.Format("02/01/2006"), Font: fontBody, Align: "R", Gap: 2},
		TextLine{Text: "CONVOCATION", Font: fontTitle, Align: "C", Gap: 1},
		TextLine{Text: "Road-safety awareness training course", Font: fontHeading, Align: "C", Gap: 6},

		TextLine{Text: d.Customer.FullName(), Font: fontBodyBold, Gap: 1},
		Paragraph{
			Text: fmt.Sprintf("You are expected at the training session no. %s held at %s, %s %s.",
				d.Session.Number, d.Session.Street, d.Session.PostalCode, d.Session.City),
			Font: fontBody, Gap: 2,
		},
		Paragraph{
			Text: fmt.Sprintf("Schedule: from %s to %s, mornings %s-%s and afternoons %s-%s.",
				d.Session.StartDate.Format("02/01/2006"), d.Session.EndDate.Format("02/01/2006"),
				d.Session.MorningStart, d.Session.MorningEnd,
				d.Session.AfternoonStart, d.Session.AfternoonEnd),
			Font: fontBody, Gap: 2,
		},
	}

	if agr := d.Session.Agreement; agr != nil {
		line := fmt.Sprintf("Session run under prefectoral agreement no. %s (department %s",
			agr.Number, agr.DepartmentCode)
		if agr.DepartmentName != nil {
			line += " - " + *agr.DepartmentName
		}
		line += ")."
		blocks = append(blocks, Paragraph{Text: line, Font: fontBody, Gap: 4})
	}

	blocks = append(blocks,
		Paragraph{
			Text: "Attendance at both full days is a legal obligation. Any absence or late " +
				"arrival, even partial, prevents validation of the course and issuance of " +
				"the attendance certificate.",
			Font: fontBodyBold, Gap: 4,
		},
		TextLine{Text: "Documents to bring:", Font: fontHeading, Gap: 1},
		Box{Lines: requiredDocuments(d.StageType), Font: fontBody, Padding: 3, Gap: 5},
		TextLine{Text: "The four regulatory cases", Font: fontHeading, Gap: 2},
	)

	for _, text := range caseParagraphs {
		blocks = append(blocks, Paragraph{Text: text, Font: fontBody, Gap: 3})
	}

	blocks = append(blocks,
		Spacer{H: 2},
		Paragraph{
			Text: "Please arrive fifteen minutes before the morning start. Sessions begin " +
				"punctually; the room closes once the course has started.",
			Font: fontBody, Gap: 2,
		},
		Paragraph{
			Text: "In case of unavoidable absence, contact us before the first day of the " +
				"session so your booking can be transferred to a later date.",
			Font: fontBody, Gap: 6,
		},
		Rule{},
		footerLine(d.Company),
	)
	return blocks
}

// footerLine renders the company registration identifiers shared by
// both document kinds.
func footerLine(c CompanyInfo) Block {
	text := fmt.Sprintf("%s - SIRET %s", c.Name, c.SIRET)
	if c.APE != "" {
		text += " - APE " + c.APE
	}
	return TextLine{Text: text, Font: fontSmall, Align: "C"}
}
