package davinci

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// XMLExtensions lists the file extensions the XML parser handles.
var XMLExtensions = []string{".xml"}

type xmlDocument struct {
	XMLName xml.Name `xml:"daysubstclass"`
	Days    []xmlDay `xml:"Day"`
}

type xmlDay struct {
	Items []xmlItem `xml:"Item"`
}

type xmlItem struct {
	Start     string `xml:"Start"`
	End       string `xml:"End"`
	Date      string `xml:"Date"`
	StartTime string `xml:"StartTime"`
	EndTime   string `xml:"EndTime"`
	Class     string `xml:"Class"`
	Teacher   string `xml:"Teacher"`
	Room      string `xml:"Room"`
	Title     string `xml:"Title"`
	Caption   string `xml:"Caption"`
}

// XMLParser consumes the DaVinci day-substitution XML dialect. Teacher, Room
// and Title carry "new (old)" value pairs recovered by the configured
// new_old pattern; the Class field separates absent classes (parenthesized,
// listed first) from affected-but-present ones.
type XMLParser struct {
	cfg  *config.Config
	sink diag.Sink
	path string

	Now func() time.Time

	raw      []byte
	text     string
	doc      xmlDocument
	rules    *captionRules
	newOld   *regexp.Regexp
	classes  *regexp.Regexp
	stand    int64
	planType plan.PlanType

	classList *plan.EntityList[plan.SchoolClass]
	entries   []*plan.ChangeEntry
	dupCount  int
}

// NewXML constructs the XML parser for the given source file.
func NewXML(cfg *config.Config, sink diag.Sink, path string) *XMLParser {
	return &XMLParser{
		cfg:       cfg,
		sink:      sink,
		path:      path,
		Now:       time.Now,
		planType:  plan.PlanFillIn | plan.PlanCanceled,
		classList: plan.NewEntityList[plan.SchoolClass](),
	}
}

// LoadFile reads and decodes the source bytes.
func (p *XMLParser) LoadFile() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not read plan %s: %v", p.path, err))
		return err
	}

	text, err := parser.DecodeBytes(raw, p.cfg.Davinci.Encoding)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not decode plan %s: %v", p.path, err))
		return err
	}
	p.raw = raw
	p.text = text
	return nil
}

// PreParse decodes the XML envelope, compiles the configured patterns and
// records the parse timestamp.
func (p *XMLParser) PreParse() error {
	p.stand = p.Now().Unix()

	rules, err := newCaptionRules(p.cfg)
	if err != nil {
		p.sink.AddError(err.Error())
		return err
	}
	p.rules = rules

	if p.newOld, err = regexp.Compile(p.cfg.Patterns.NewOld); err != nil {
		p.sink.AddError(fmt.Sprintf("bad new_old pattern: %v", err))
		return fmt.Errorf("%w: new_old pattern: %v", parser.ErrStructural, err)
	}
	if p.classes, err = regexp.Compile(p.cfg.Patterns.Classes); err != nil {
		p.sink.AddError(fmt.Sprintf("bad classes pattern: %v", err))
		return fmt.Errorf("%w: classes pattern: %v", parser.ErrStructural, err)
	}

	if err := xml.Unmarshal([]byte(p.text), &p.doc); err != nil {
		p.sink.AddError(fmt.Sprintf("could not parse the plan %s: %v", p.path, err))
		return fmt.Errorf("%w: %v", parser.ErrStructural, err)
	}
	return nil
}

// Parse walks every Day/Item element. A malformed item is skipped with a
// diagnostic; exact duplicates on (date, hour, course, teacher, subject,
// room) are rejected by a linear scan against the records produced so far.
func (p *XMLParser) Parse() error {
	for _, day := range p.doc.Days {
		for _, item := range day.Items {
			p.parseItem(item)
		}
	}
	if p.dupCount > 0 {
		p.sink.AddInfo(fmt.Sprintf("dropped %d duplicate items", p.dupCount))
	}
	return nil
}

func (p *XMLParser) parseItem(item xmlItem) {
	startHour, err := strconv.Atoi(strings.TrimSpace(item.Start))
	if err != nil {
		p.sink.AddWarning(fmt.Sprintf("item without usable start period %q - skipping", item.Start))
		return
	}
	endHour := startHour
	if strings.TrimSpace(item.End) != "" {
		if endHour, err = strconv.Atoi(strings.TrimSpace(item.End)); err != nil {
			p.sink.AddWarning(fmt.Sprintf("item without usable end period %q - skipping", item.End))
			return
		}
	}

	date := reformatDate(strings.TrimSpace(item.Date))

	absent, present, ok := p.splitClasses(item.Class)
	if !ok {
		p.sink.AddWarning(fmt.Sprintf("item with unusable class field %q - skipping", item.Class))
		return
	}
	for _, cl := range append(append([]string{}, absent...), present...) {
		if _, found := p.classList.Find(cl); !found {
			p.classList.Append(plan.SchoolClass{Abbreviation: cl})
		}
	}

	oldTeacher, newTeacher := p.splitNewOld(item.Teacher)
	oldRoom, newRoom := p.splitNewOld(item.Room)
	oldSubject, newSubject := p.splitNewOld(item.Title)

	if len(present) > 0 {
		entry := plan.NewChangeEntry([]string{date}, plan.PlanFillIn, 0)
		for h := startHour; h <= endHour; h++ {
			entry.Hours = append(entry.Hours, plan.TimeFrame{Hour: h})
		}
		entry.StartTime = clockTime(strings.TrimSpace(item.StartTime))
		entry.EndTime = clockTime(strings.TrimSpace(item.EndTime))
		entry.Course = present
		entry.Teacher = oldTeacher
		entry.Room = oldRoom
		entry.Subject = oldSubject
		if newTeacher != oldTeacher {
			entry.ChangeTeacher = newTeacher
			entry.ChgType |= plan.ChangeTeacher
		}
		if newRoom != oldRoom {
			entry.ChangeRoom = newRoom
			entry.ChgType |= plan.ChangeRoom
		}
		if newSubject != oldSubject {
			entry.ChangeSubject = newSubject
			entry.ChgType |= plan.ChangeSubject
		}
		entry.Info = strings.TrimSpace(item.Caption)

		if !p.rules.applyMovedTo(entry, strings.TrimSpace(item.Caption)) {
			p.rules.applyMovedFrom(entry, strings.TrimSpace(item.Caption))
		}
		p.rules.stripDiscardable(entry)

		p.appendUnlessDuplicate(entry)
	}

	if len(absent) > 0 {
		// A whole slot void: schedule fields cleared, hour forced to 0.
		entry := plan.NewChangeEntry([]string{date}, plan.PlanCanceled, plan.ChangeCancelled)
		entry.Hours = []plan.TimeFrame{{Hour: 0}}
		entry.Course = absent
		entry.Info = strings.TrimSpace(item.Caption)
		p.rules.stripDiscardable(entry)
		p.appendUnlessDuplicate(entry)
	}
}

// splitClasses separates the parenthesized absent-class list from the
// comma-separated affected classes.
func (p *XMLParser) splitClasses(field string) (absent, present []string, ok bool) {
	groups, matched := namedGroups(p.classes, strings.TrimSpace(field))
	if !matched {
		return nil, nil, false
	}
	absent = splitClassList(groups["absent"])
	present = splitClassList(groups["present"])
	if len(absent) == 0 && len(present) == 0 {
		return nil, nil, false
	}
	return absent, present, true
}

// splitNewOld resolves a "new (old)" pair; a bare name means no change.
func (p *XMLParser) splitNewOld(field string) (oldValue, newValue string) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", ""
	}
	groups, ok := namedGroups(p.newOld, field)
	if !ok {
		return field, field
	}
	if groups["bare"] != "" {
		return groups["bare"], groups["bare"]
	}
	return strings.TrimSpace(groups["old"]), strings.TrimSpace(groups["new"])
}

func (p *XMLParser) appendUnlessDuplicate(entry *plan.ChangeEntry) {
	for _, existing := range p.entries {
		if existing.Equal(entry) &&
			existing.Teacher == entry.Teacher &&
			existing.Subject == entry.Subject {
			p.dupCount++
			return
		}
	}
	p.entries = append(p.entries, entry)
}

// PostParse is a no-op for this format.
func (p *XMLParser) PostParse() error {
	return nil
}

// Result returns the envelope with the class registry and its hash.
func (p *XMLParser) Result() *parser.Result {
	classes := p.classList.Serialize()
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

func splitClassList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
