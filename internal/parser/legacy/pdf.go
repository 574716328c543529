package legacy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// PDFExtensions lists the file extensions the PDF parser handles.
var PDFExtensions = []string{".pdf"}

// TextExtractor turns a PDF file into one plain-text string per page.
// Tests swap it for a canned extractor.
type TextExtractor func(path string) ([]string, error)

// ExtractText is the default extractor.
func ExtractText(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// PDFParser reads the legacy absent-classes plan: the text layout names a
// weekday, then somewhere below it a marker line, then one block of
// `;`-separated class segments. Each segment starts with the class number,
// followed by three tokens of timetable filler, followed by free text.
type PDFParser struct {
	cfg  *config.Config
	sink diag.Sink
	path string

	Now     func() time.Time
	Extract TextExtractor

	pages    []string
	stand    int64
	planType plan.PlanType
	classes  *plan.EntityList[plan.SchoolClass]
	entries  []*plan.ChangeEntry
}

// NewPDF constructs the PDF parser for the given source file.
func NewPDF(cfg *config.Config, sink diag.Sink, path string) *PDFParser {
	return &PDFParser{
		cfg:      cfg,
		sink:     sink,
		path:     path,
		Now:      time.Now,
		Extract:  ExtractText,
		planType: plan.PlanCanceled,
		classes:  plan.NewEntityList[plan.SchoolClass](),
	}
}

// LoadFile extracts the per-page text.
func (p *PDFParser) LoadFile() error {
	pages, err := p.Extract(p.path)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not extract text from %s: %v", p.path, err))
		return err
	}
	p.pages = pages
	return nil
}

// PreParse records the parse timestamp.
func (p *PDFParser) PreParse() error {
	p.stand = p.Now().Unix()
	return nil
}

// Parse scans each page for weekday boundaries and the marker line,
// collects the class block per day and emits one whole-day cancellation
// per class segment.
func (p *PDFParser) Parse() error {
	for _, page := range p.pages {
		p.parsePage(page)
	}
	return nil
}

func (p *PDFParser) parsePage(page string) {
	lines := strings.Split(page, "\n")

	currentDay := -1
	collecting := false
	var block []string

	flush := func() {
		if currentDay >= 0 && len(block) > 0 {
			p.parseDayBlock(currentDay, strings.Join(block, " "))
		}
		block = nil
		collecting = false
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if day := p.weekdayIndex(line); day >= 0 {
			flush()
			currentDay = day
			continue
		}
		if strings.HasPrefix(line, p.cfg.Legacy.MissingClassesMarker) {
			collecting = true
			rest := strings.TrimSpace(strings.TrimPrefix(line, p.cfg.Legacy.MissingClassesMarker))
			if rest != "" {
				block = append(block, rest)
			}
			continue
		}
		if collecting {
			block = append(block, line)
		}
	}
	flush()
}

// weekdayIndex matches a line against the configured weekday names and
// returns the weekday in clock convention (Sunday 0), or -1. The
// configured list starts on Monday.
func (p *PDFParser) weekdayIndex(line string) int {
	for i, name := range p.cfg.Legacy.WeekdayNames {
		if strings.HasPrefix(line, name) {
			return (i + 1) % 7
		}
	}
	return -1
}

// parseDayBlock splits one day's class block. Segment shape: class number,
// three discarded tokens, free text.
func (p *PDFParser) parseDayBlock(weekday int, block string) {
	date := p.nextDateFor(weekday).Format("02.01.2006")

	for _, segment := range strings.Split(block, ";") {
		tokens := strings.Fields(segment)
		if len(tokens) < 4 {
			if strings.TrimSpace(segment) != "" {
				p.sink.AddWarning(fmt.Sprintf("unusable class segment %q - skipping", segment))
			}
			continue
		}
		className := tokens[0]
		if _, err := strconv.Atoi(className); err != nil {
			p.sink.AddWarning(fmt.Sprintf("class segment without class number %q - skipping", segment))
			continue
		}
		info := strings.Join(tokens[4:], " ")

		entry := plan.NewChangeEntry([]string{date}, plan.PlanCanceled, plan.ChangeCancelled)
		entry.Hours = []plan.TimeFrame{{Hour: 0}}
		entry.StartTime = "00:00:00"
		entry.EndTime = "23:59:59"
		entry.Course = []string{className}
		entry.Info = info
		p.entries = append(p.entries, entry)

		if _, ok := p.classes.Find(className); !ok {
			p.classes.Append(plan.SchoolClass{Abbreviation: className})
		}
	}
}

// nextDateFor resolves a weekday name to its next calendar occurrence,
// today included. The layout carries no dates of its own.
func (p *PDFParser) nextDateFor(weekday int) time.Time {
	date := p.Now()
	for int(date.Weekday()) != weekday {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

// PostParse is a no-op for this format.
func (p *PDFParser) PostParse() error {
	return nil
}

// Result returns the envelope with the class registry and its content hash.
func (p *PDFParser) Result() *parser.Result {
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
