// Package export renders a project's sections into a paginated PDF.
package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

const (
	ContentType     = "application/pdf"
	defaultFilename = "research_document.pdf"

	margin      = 20.0
	bodySize    = 11.0
	lineHeight  = 5.5
	listIndent  = 6.0
	markerWidth = 6.0
	fontFamily  = "Helvetica"
)

var headingSizes = map[int]float64{1: 18, 2: 16, 3: 14, 4: 13, 5: 12, 6: 12}

// Document is what gets exported: the project and its ordered sections.
type Document struct {
	Project  domain.Project
	Sections []domain.Section
}

type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render returns the PDF bytes for doc. Hidden sections are skipped.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf, err := r.layout(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type page struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
}

func (r *Renderer) layout(doc Document) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreationDate(r.now())
	pdf.SetTitle(doc.Project.Title, true)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), width: w - 2*margin, height: h}

	p.header(doc.Project)

	first := true
	for _, sec := range doc.Sections {
		if !sec.IsVisible {
			continue
		}
		blocks, err := Blocks(sec.Content)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", sec.Title, err)
		}
		if !first {
			p.divider()
		}
		first = false
		p.sectionTitle(sec.Title)
		for _, b := range blocks {
			p.block(b)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	return pdf, nil
}

func (p *page) remaining() float64 {
	return p.height - margin - p.pdf.GetY()
}

// ensure starts a new page when need does not fit below the cursor.
func (p *page) ensure(need float64) {
	if need > p.remaining() && p.pdf.GetY() > margin {
		p.pdf.AddPage()
	}
}

func (p *page) header(proj domain.Project) {
	title := strings.TrimSpace(proj.Title)
	if title == "" {
		title = domain.DefaultTitle
	}
	p.pdf.SetFont(fontFamily, "B", 22)
	p.pdf.MultiCell(p.width, 10, p.tr(title), "", "L", false)
	p.pdf.Ln(2)

	p.pdf.SetFont(fontFamily, "", 10)
	p.pdf.SetTextColor(100, 100, 100)
	p.pdf.MultiCell(p.width, 5, p.tr("Industry: "+proj.Industry), "", "L", false)
	if ps := strings.TrimSpace(proj.ProblemStatement); ps != "" {
		p.pdf.SetFont(fontFamily, "I", 10)
		p.pdf.MultiCell(p.width, 5, p.tr(ps), "", "L", false)
	}
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.Ln(4)
	p.divider()
}

func (p *page) divider() {
	p.ensure(8)
	p.pdf.Ln(3)
	y := p.pdf.GetY()
	p.pdf.SetDrawColor(210, 210, 210)
	p.pdf.SetLineWidth(0.3)
	p.pdf.Line(margin, y, margin+p.width, y)
	p.pdf.Ln(5)
}

func (p *page) sectionTitle(title string) {
	p.pdf.SetFont(fontFamily, "B", 16)
	lines := p.pdf.SplitText(p.tr(title), p.width)
	// keep the title together with the first body lines
	p.ensure(float64(len(lines))*8 + 3*lineHeight)
	p.pdf.MultiCell(p.width, 8, p.tr(title), "", "L", false)
	p.pdf.Ln(2)
}

func (p *page) block(b Block) {
	switch b.Kind {
	case Heading:
		size := headingSizes[b.Level]
		p.pdf.SetFont(fontFamily, "B", size)
		text := p.tr(b.Text())
		lh := size * 0.5
		p.ensure(float64(len(p.pdf.SplitText(text, p.width)))*lh + 3)
		p.pdf.Ln(3)
		p.pdf.MultiCell(p.width, lh, text, "", "L", false)
		p.pdf.Ln(1)

	case ListItem:
		indent := float64(b.Depth-1)*listIndent + listIndent
		avail := p.width - indent - markerWidth
		p.ensure(p.estimate(b, avail))

		p.pdf.SetFont(fontFamily, "", bodySize)
		p.pdf.SetX(margin + indent)
		p.pdf.CellFormat(markerWidth, lineHeight, p.tr(b.Marker), "", 0, "L", false, 0, "")

		p.pdf.SetLeftMargin(margin + indent + markerWidth)
		p.writeRuns(b.Runs)
		p.pdf.SetLeftMargin(margin)
		p.pdf.Ln(lineHeight + 1)

	default:
		p.ensure(p.estimate(b, p.width))
		p.pdf.SetX(margin)
		p.writeRuns(b.Runs)
		p.pdf.Ln(lineHeight + 2.5)
	}
}

// estimate measures b at body size. Styled runs are slightly wider, so the
// result is rounded up by a line.
func (p *page) estimate(b Block, width float64) float64 {
	p.pdf.SetFont(fontFamily, "", bodySize)
	n := 0
	for _, part := range strings.Split(b.Text(), "\n") {
		n += max(1, len(p.pdf.SplitText(p.tr(part), width)))
	}
	return float64(n+1) * lineHeight
}

func (p *page) writeRuns(runs []Run) {
	for _, r := range runs {
		style := ""
		if r.Bold {
			style += "B"
		}
		if r.Italic {
			style += "I"
		}
		if r.Underline {
			style += "U"
		}
		p.pdf.SetFont(fontFamily, style, bodySize)
		p.pdf.Write(lineHeight, p.tr(r.Text))
	}
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename derives the download name from the project title.
func Filename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return defaultFilename
	}
	return unsafeFilename.ReplaceAllString(title, "_") + ".pdf"
}
