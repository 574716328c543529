// Package legacy parses the two oldest plan exports still in circulation:
// a bootstrap HTML table carrying the same eight columns as the CSV
// dialect, and a PDF whose text layout lists absent classes per weekday.
package legacy

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// HTMLExtensions lists the file extensions the HTML parser handles.
var HTMLExtensions = []string{".html", ".htm"}

// headerRows is the number of leading table rows that carry headings and
// layout filler instead of plan data.
const headerRows = 3

// ExtractTable pulls the first <table> out of an HTML document as a 2-D
// array of cell texts. A cell that is empty or holds only a non-breaking
// space is blanked.
func ExtractTable(html string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", parser.ErrStructural, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table element found", parser.ErrStructural)
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, blankCell(td.Text()))
		})
		rows = append(rows, cells)
	})
	return rows, nil
}

func blankCell(s string) string {
	if strings.TrimSpace(strings.ReplaceAll(s, " ", "")) == "" {
		return ""
	}
	return strings.TrimSpace(s)
}

// HTMLParser reads the table export. The row layout matches the CSV
// dialect: date;hours;teacher;subject;class;info;room;note.
type HTMLParser struct {
	cfg  *config.Config
	sink diag.Sink
	path string

	Now func() time.Time

	raw      []byte
	rows     [][]string
	stand    int64
	planType plan.PlanType
	classes  *plan.EntityList[plan.SchoolClass]
	entries  []*plan.ChangeEntry
}

// NewHTML constructs the HTML table parser for the given source file.
func NewHTML(cfg *config.Config, sink diag.Sink, path string) *HTMLParser {
	return &HTMLParser{
		cfg:      cfg,
		sink:     sink,
		path:     path,
		Now:      time.Now,
		planType: plan.PlanAdditional,
		classes:  plan.NewEntityList[plan.SchoolClass](),
	}
}

// LoadFile reads the raw source bytes.
func (p *HTMLParser) LoadFile() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not read plan %s: %v", p.path, err))
		return err
	}
	p.raw = raw
	return nil
}

// PreParse decodes the document, extracts the table and discards the
// header rows.
func (p *HTMLParser) PreParse() error {
	p.stand = p.Now().Unix()

	text, err := parser.DecodeBytes(p.raw, "")
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not decode plan %s: %v", p.path, err))
		return err
	}

	rows, err := ExtractTable(text)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not extract table from %s: %v", p.path, err))
		return err
	}
	if len(rows) > headerRows {
		rows = rows[headerRows:]
	} else {
		rows = nil
	}
	p.rows = rows
	return nil
}

// Parse converts the table rows into entries the same way the CSV parser
// does.
func (p *HTMLParser) Parse() error {
	for _, row := range p.rows {
		if len(row) != 8 {
			continue
		}
		date, hours, teacher, subject, className := row[0], row[1], row[2], row[3], row[4]
		info, room, note := row[5], row[6], row[7]

		if len(strings.Split(date, ".")) != 3 {
			continue
		}

		first, last, err := parser.HourRange(hours)
		if err != nil {
			p.sink.AddWarning(fmt.Sprintf("unusable hour range %q: %v", hours, err))
			continue
		}

		entry := plan.NewChangeEntry([]string{date}, plan.PlanAdditional, plan.ChangeAddInfo)
		for h := first; h <= last; h++ {
			entry.Hours = append(entry.Hours, plan.TimeFrame{Hour: h})
		}

		className = strings.TrimSpace(className)
		entry.Teacher = teacher
		entry.Subject = subject
		entry.Room = room
		entry.Course = []string{className}
		entry.Info = info
		entry.Note = note
		p.entries = append(p.entries, entry)

		if className != "" {
			if _, ok := p.classes.Find(className); !ok {
				p.classes.Append(plan.SchoolClass{Abbreviation: className})
			}
		}
	}
	return nil
}

// PostParse is a no-op for this format.
func (p *HTMLParser) PostParse() error {
	return nil
}

// Result returns the envelope with the class registry and its content hash.
func (p *HTMLParser) Result() *parser.Result {
	classes := p.classes.Serialize()
	return &parser.Result{
		Stand:    p.stand,
		Plan:     plan.FlattenAll(p.entries),
		PlanType: p.planType,
		Classes:  classes,
		Hashes: map[string]string{
			"classes": plan.HashSerialized(classes),
		},
	}
}
