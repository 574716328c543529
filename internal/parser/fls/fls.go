// Package fls parses the FLS "simple" CSV dialect: one change per line,
// eight positional fields separated by semicolons.
package fls

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// Extensions lists the file extensions this parser is responsible for.
var Extensions = []string{".csv"}

// Parser consumes rows of the form
//
//	date;hours;teacher;subject;class;info;room;note
//
// and produces one ADDITIONAL ChangeEntry per well-formed row.
type Parser struct {
	cfg  *config.Config
	sink diag.Sink
	path string

	// Now is the clock used for the stand timestamp; overridable in tests.
	Now func() time.Time

	rows     [][]string
	stand    int64
	planType plan.PlanType
	classes  *plan.EntityList[plan.SchoolClass]
	entries  []*plan.ChangeEntry
}

// New constructs a parser for the given source file.
func New(cfg *config.Config, sink diag.Sink, path string) *Parser {
	return &Parser{
		cfg:      cfg,
		sink:     sink,
		path:     path,
		Now:      time.Now,
		planType: plan.PlanAdditional,
		classes:  plan.NewEntityList[plan.SchoolClass](),
	}
}

// LoadFile reads and decodes the CSV source into rows.
func (p *Parser) LoadFile() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not read plan %s: %v", p.path, err))
		return err
	}

	text, err := parser.DecodeBytes(raw, p.cfg.Fls.Encoding)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not decode plan %s: %v", p.path, err))
		return err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not read csv rows of %s: %v", p.path, err))
		return fmt.Errorf("%w: %v", parser.ErrStructural, err)
	}
	p.rows = rows
	return nil
}

// PreParse records the parse timestamp.
func (p *Parser) PreParse() error {
	p.stand = p.Now().Unix()
	return nil
}

// Parse walks the rows. A row that does not carry all eight fields or whose
// date does not split into day.month.year is tolerated silently; that is how
// header and filler lines pass through. A malformed hour range is skipped
// with a diagnostic.
func (p *Parser) Parse() error {
	for _, row := range p.rows {
		if len(row) != 8 {
			// might be an empty line
			continue
		}
		date, hours := row[0], row[1]
		teacher, subject := parser.CleanCell(row[2]), parser.CleanCell(row[3])
		className := strings.TrimSpace(row[4])
		info, room, note := parser.CleanCell(row[5]), parser.CleanCell(row[6]), parser.CleanCell(row[7])

		if len(strings.Split(date, ".")) != 3 {
			// probably the header line: skip
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
func (p *Parser) PostParse() error {
	return nil
}

// Result returns the envelope with the class registry and its content hash.
func (p *Parser) Result() *parser.Result {
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
