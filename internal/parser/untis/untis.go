// Package untis parses the Untis multi-file tabular export. The export tool
// writes nine tab-delimited companion files non-atomically into one
// directory, so parsing starts with a bounded wait for the full set.
package untis

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// Extensions lists the file extensions this parser handles. Any of the
// companion files may be handed in; the directory is what gets parsed.
var Extensions = []string{".txt"}

// fileNames is the full companion set, in parse order. Master data first,
// lessons before substitutions so remarks can be attached to generated
// entries.
var fileNames = []string{
	"date.txt",
	"time.txt",
	"class.txt",
	"room.txt",
	"subject.txt",
	"teacher.txt",
	"lesson.txt",
	"substitution.txt",
	"supervision.txt",
}

// Abbreviated day names in export locale, indexed like time.Weekday.
var shortWeekdays = [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

var movedInfoPattern = regexp.MustCompile(
	`^([a-zA-Z]{2,3})-([0-9]{1,2})\.([0-9]{1,2})\.\s/\s([0-9])$`)

// planDate is one row of date.txt. The rows describe the school year's week
// layout; they are kept for reference but nothing downstream needs them yet.
type planDate struct {
	Week       int
	Day        string
	Date       time.Time
	SchoolWeek int
}

// lesson is one row of lesson.txt: a weekly occurrence plus a week bitmask.
// Position w-1 of WeekFlags says what happens in ISO week w: '1' the lesson
// takes place, 'x' it runs as a standin only, anything else it does not
// occur.
type lesson struct {
	Teacher     string
	Weekday     int
	Hour        int
	Subject     string
	Room        string
	UntisNumber int
	// Flag: 0 regular, 1 cancelled, 2 substitution, 3 moved.
	Flag       int
	ClassName  string
	WeekFlags  []byte
	LineNumber int
}

func (l *lesson) occur(week int) byte {
	idx := week - 1
	if idx < 0 || idx >= len(l.WeekFlags) {
		return 0
	}
	if c := l.WeekFlags[idx]; c == '1' || c == 'x' {
		return c
	}
	return 0
}

// isMain reports whether this row is a plan entry in its own right rather
// than a substitution/move sub-row.
func (l *lesson) isMain() bool {
	return l.Flag == 0 || l.Flag == 1
}

func (l *lesson) keyLess(o *lesson) bool {
	if l.Weekday != o.Weekday {
		return l.Weekday < o.Weekday
	}
	if l.Hour != o.Hour {
		return l.Hour < o.Hour
	}
	if l.ClassName != o.ClassName {
		return l.ClassName < o.ClassName
	}
	return l.LineNumber < o.LineNumber
}

func (l *lesson) keyEqual(o *lesson) bool {
	return l.Weekday == o.Weekday && l.Hour == o.Hour &&
		l.ClassName == o.ClassName && l.LineNumber == o.LineNumber
}

// lessonList keeps lessons sorted by (weekday, hour, className, lineNumber)
// so slot lookups can bisect.
type lessonList struct {
	items []*lesson
}

func (ll *lessonList) append(l *lesson) {
	ll.items = append(ll.items, l)
}

func (ll *lessonList) sort() {
	sort.SliceStable(ll.items, func(i, j int) bool {
		return ll.items[i].keyLess(ll.items[j])
	})
}

// find returns all rows on the given slot key. With skipMain set, only
// substitution sub-rows are returned; with week > 0, only rows active in
// that week.
func (ll *lessonList) find(weekday, hour int, className string, lineNumber, week int, skipMain bool) []*lesson {
	probe := &lesson{Weekday: weekday, Hour: hour, ClassName: className, LineNumber: lineNumber}
	idx := sort.Search(len(ll.items), func(i int) bool {
		return !ll.items[i].keyLess(probe)
	})

	var out []*lesson
	for ; idx < len(ll.items) && ll.items[idx].keyEqual(probe); idx++ {
		candidate := ll.items[idx]
		if skipMain && candidate.isMain() {
			continue
		}
		if week > 0 && candidate.occur(week) == 0 {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// substitution is one "VTD" row of substitution.txt. Only rows carrying a
// note or moved info matter; the actual change payload is already covered
// by the lesson file.
type substitution struct {
	Nr            int
	Type          string
	Date          string // "25.6.", no year
	Day           string
	Hour          string
	Time          string
	Subject       string
	ChangeSubject string
	Teacher       string
	ChangeTeacher string
	ClassName     string
	Room          string
	ChangeRoom    string
	MovedInfo     string
	Notes         string
}

func (s *substitution) relevant() bool {
	return s.Notes != "" || s.MovedInfo != ""
}

// resolveDate turns the year-less DD.MM. date into a concrete date: this
// year if it still lies ahead, else next year.
func (s *substitution) resolveDate(now time.Time) (time.Time, error) {
	dt, err := time.Parse("2.1.2006", s.Date+strconv.Itoa(now.Year()))
	if err != nil {
		return time.Time{}, err
	}
	if dt.Before(now) {
		dt, err = time.Parse("2.1.2006", s.Date+strconv.Itoa(now.Year()+1))
	}
	return dt, err
}

// Parser joins the nine companion files of one export directory into a
// single plan. Now is the clock used for week generation and year
// resolution; tests inject a fixed one.
type Parser struct {
	cfg  *config.Config
	sink diag.Sink
	path string
	dir  string

	Now func() time.Time

	raw   map[string][]byte
	rows  map[string][][]string
	stand int64

	planType plan.PlanType

	planDates   []planDate
	classList   *plan.EntityList[plan.SchoolClass]
	roomList    *plan.EntityList[plan.Room]
	subjectList *plan.EntityList[plan.Subject]
	teacherList *plan.EntityList[plan.Teacher]

	timeFramesPupil plan.Timetable
	timeFramesDuty  plan.Timetable
	lessons         lessonList

	absentClasses []*plan.ChangeEntry
	supervision   []*plan.ChangeEntry
	standin       []*plan.ChangeEntry
}

// New constructs the parser for any file inside an export directory.
func New(cfg *config.Config, sink diag.Sink, path string) *Parser {
	return &Parser{
		cfg:  cfg,
		sink: sink,
		path: path,
		dir:  filepath.Dir(path),
		Now:  time.Now,
		planType: plan.PlanCanceled | plan.PlanFillIn | plan.PlanRegular |
			plan.PlanOutTeacher | plan.PlanYardDuty,
		raw:         make(map[string][]byte),
		rows:        make(map[string][][]string),
		classList:   plan.NewEntityList[plan.SchoolClass](),
		roomList:    plan.NewEntityList[plan.Room](),
		subjectList: plan.NewEntityList[plan.Subject](),
		teacherList: plan.NewEntityList[plan.Teacher](),
	}
}

// LoadFile waits for the full companion set to appear, then reads every
// file into memory. A missing set after the timeout is fatal.
func (p *Parser) LoadFile() error {
	if err := p.waitForFiles(); err != nil {
		p.sink.AddError(err.Error())
		return err
	}

	for _, name := range fileNames {
		raw, err := os.ReadFile(filepath.Join(p.dir, name))
		if err != nil {
			p.sink.AddError(fmt.Sprintf("could not read %s: %v", name, err))
			return err
		}
		p.raw[name] = raw
	}
	return nil
}

func (p *Parser) waitForFiles() error {
	timeout := time.Duration(p.cfg.Untis.FileTimeoutSeconds) * time.Second
	interval := time.Duration(p.cfg.Untis.PollIntervalSeconds) * time.Second
	deadline := time.Now().Add(timeout)

	for {
		missing := ""
		for _, name := range fileNames {
			if _, err := os.Stat(filepath.Join(p.dir, name)); err != nil {
				missing = name
				break
			}
		}
		if missing == "" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s still missing in %s after %s",
				parser.ErrFilesTimeout, missing, p.dir, timeout)
		}
		time.Sleep(interval)
	}
}

// PreParse decodes every file and splits it into tab-delimited rows.
func (p *Parser) PreParse() error {
	p.stand = p.Now().Unix()

	for _, name := range fileNames {
		text, err := parser.DecodeBytes(p.raw[name], p.cfg.Untis.Encoding)
		if err != nil {
			p.sink.AddError(fmt.Sprintf("could not decode %s: %v", name, err))
			return err
		}

		r := csv.NewReader(strings.NewReader(text))
		r.Comma = '\t'
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		rows, err := r.ReadAll()
		if err != nil {
			p.sink.AddError(fmt.Sprintf("could not parse %s: %v", name, err))
			return fmt.Errorf("%w: %s: %v", parser.ErrStructural, name, err)
		}
		p.rows[name] = rows
	}
	return nil
}

// Parse processes the files in their fixed order.
func (p *Parser) Parse() error {
	p.parseDates(p.rows["date.txt"])
	p.parseTimes(p.rows["time.txt"])
	p.deriveDutyTimetable()
	p.parseClasses(p.rows["class.txt"])
	p.parseRooms(p.rows["room.txt"])
	p.parseSubjects(p.rows["subject.txt"])
	p.parseTeachers(p.rows["teacher.txt"])
	p.parseLessons(p.rows["lesson.txt"])
	p.inferWholeDayCancellations()
	p.parseSubstitutions(p.rows["substitution.txt"])
	p.parseSupervisions(p.rows["supervision.txt"])
	return nil
}

func (p *Parser) parseDates(rows [][]string) {
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		dt, err := time.Parse("20060102", row[2])
		if err != nil {
			p.sink.AddWarning(fmt.Sprintf("date row with unusable date %q - skipping", row[2]))
			continue
		}
		week, _ := strconv.Atoi(row[0])
		schoolWeek, _ := strconv.Atoi(row[3])
		p.planDates = append(p.planDates, planDate{
			Week:       week,
			Day:        row[1],
			Date:       dt,
			SchoolWeek: schoolWeek,
		})
	}
}

func (p *Parser) parseTimes(rows [][]string) {
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		weekday, err1 := strconv.Atoi(row[0])
		hour, err2 := strconv.Atoi(row[1])
		if err1 != nil || err2 != nil {
			p.sink.AddWarning(fmt.Sprintf("time row with unusable numbers %v - skipping", row))
			continue
		}
		p.timeFramesPupil.Append(plan.TimeFrame{
			Weekday: weekday,
			Hour:    hour,
			Start:   row[3] + "00",
			End:     row[4] + "00",
		})
	}
}

// deriveDutyTimetable builds the break-supervision grid from the pupil
// grid: one duty slot per gap between consecutive pupil slots of the same
// weekday, numbered like the pupil hour it follows. Back-to-back slots
// leave no gap and produce nothing.
func (p *Parser) deriveDutyTimetable() {
	frames := p.timeFramesPupil.Frames()
	for i := 0; i+1 < len(frames); i++ {
		cur, next := frames[i], frames[i+1]
		if cur.Weekday != next.Weekday {
			continue
		}
		if cur.End >= next.Start {
			continue
		}
		p.timeFramesDuty.Append(plan.TimeFrame{
			Weekday: cur.Weekday,
			Hour:    cur.Hour,
			Start:   cur.End,
			End:     next.Start,
		})
	}
}

func (p *Parser) parseClasses(rows [][]string) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		p.classList.Append(plan.SchoolClass{Abbreviation: row[0], Description: row[1]})
	}
}

func (p *Parser) parseRooms(rows [][]string) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		p.roomList.Append(plan.Room{Abbreviation: row[0], Description: row[1]})
	}
}

func (p *Parser) parseSubjects(rows [][]string) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		p.subjectList.Append(plan.Subject{Abbreviation: row[0], Description: row[1]})
	}
}

func (p *Parser) parseTeachers(rows [][]string) {
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		p.teacherList.Append(plan.Teacher{
			Abbreviation: row[0],
			LastName:     row[1],
			FirstName:    row[3],
		})
	}
}

func (p *Parser) parseLessons(rows [][]string) {
	for _, row := range rows {
		les, err := lessonFromRow(row)
		if err != nil {
			p.sink.AddData(strings.Join(row, "\t"))
			p.sink.AddWarning(fmt.Sprintf("unusable lesson row - skipping: %v", err))
			continue
		}
		if les.Flag == 1 && les.ClassName == "" {
			p.mergeBlanketCancellation(les)
			continue
		}
		p.lessons.append(les)
	}
	p.lessons.sort()

	start := p.Now()
	for _, les := range p.lessons.items {
		p.standin = append(p.standin,
			p.generateEntries(les, start, p.cfg.Untis.Weeks)...)
	}
	sort.SliceStable(p.standin, func(i, j int) bool {
		return p.standin[i].Less(p.standin[j])
	})
}

func lessonFromRow(row []string) (*lesson, error) {
	if len(row) < 10 {
		return nil, fmt.Errorf("expected 10 columns, got %d", len(row))
	}
	weekday, err := strconv.Atoi(row[1])
	if err != nil {
		return nil, fmt.Errorf("weekday: %v", err)
	}
	hour, err := strconv.Atoi(row[2])
	if err != nil {
		return nil, fmt.Errorf("hour: %v", err)
	}
	untisNumber, err := strconv.Atoi(row[5])
	if err != nil {
		return nil, fmt.Errorf("untis number: %v", err)
	}
	flag, err := strconv.Atoi(row[6])
	if err != nil {
		return nil, fmt.Errorf("flag: %v", err)
	}
	lineNumber, err := strconv.Atoi(row[9])
	if err != nil {
		return nil, fmt.Errorf("line number: %v", err)
	}
	return &lesson{
		Teacher:     row[0],
		Weekday:     weekday,
		Hour:        hour,
		Subject:     row[3],
		Room:        strings.TrimSpace(row[4]),
		UntisNumber: untisNumber,
		Flag:        flag,
		ClassName:   row[7],
		WeekFlags:   []byte(row[8]),
		LineNumber:  lineNumber,
	}, nil
}

// mergeBlanketCancellation folds a class-less cancellation sub-row into the
// matching main lesson's week mask. Active positions of the cancellation
// row are written as 'x' into the main mask, but only over positions the
// main mask does not already mark.
func (p *Parser) mergeBlanketCancellation(cancel *lesson) {
	for _, main := range p.lessons.items {
		if !main.isMain() || main.Flag == cancel.Flag {
			continue
		}
		if main.Weekday != cancel.Weekday || main.Hour != cancel.Hour ||
			main.LineNumber != cancel.LineNumber ||
			main.Teacher != cancel.Teacher || main.Subject != cancel.Subject ||
			main.UntisNumber != cancel.UntisNumber {
			continue
		}
		for i := 0; i < len(cancel.WeekFlags) && i < len(main.WeekFlags); i++ {
			if cancel.WeekFlags[i] != '1' && cancel.WeekFlags[i] != 'x' {
				continue
			}
			if main.WeekFlags[i] != '1' && main.WeekFlags[i] != 'x' {
				main.WeekFlags[i] = 'x'
			}
		}
		return
	}
	p.sink.AddDebug("cancellation sub-row without a matching main lesson - dropped")
}

// generateEntries emits one entry per forthcoming week in which the lesson
// occurs. Regular occurrences are emitted too; this consumer wants the full
// timetable, not only the deltas.
func (p *Parser) generateEntries(les *lesson, start time.Time, weeks int) []*plan.ChangeEntry {
	if !les.isMain() {
		return nil
	}

	var out []*plan.ChangeEntry
	curDate := start
	for generated := 0; generated < weeks; generated++ {
		for int(curDate.Weekday()) != les.Weekday {
			curDate = curDate.AddDate(0, 0, 1)
		}
		_, week := curDate.ISOWeek()

		occ := les.occur(week)
		if occ != 0 {
			if entry := p.generateEntry(les, curDate, week, occ); entry != nil {
				out = append(out, entry)
			}
		}
		curDate = curDate.AddDate(0, 0, 1)
	}
	return out
}

func (p *Parser) generateEntry(les *lesson, date time.Time, week int, occ byte) *plan.ChangeEntry {
	tf, ok := p.timeFramesPupil.Find(les.Weekday, les.Hour)
	if !ok {
		p.sink.AddWarning(fmt.Sprintf(
			"no timeframe for weekday %d hour %d - skipping lesson", les.Weekday, les.Hour))
		return nil
	}

	entry := plan.NewChangeEntry([]string{date.Format("02.01.2006")}, 0, 0)
	entry.Hours = []plan.TimeFrame{tf}
	entry.StartTime = tf.Start
	entry.EndTime = tf.End
	entry.Teacher = les.Teacher
	entry.Subject = les.Subject
	entry.Room = les.Room
	entry.Course = []string{les.ClassName}

	substituted := false
	for _, sub := range p.lessons.find(les.Weekday, les.Hour, les.ClassName, les.LineNumber, week, true) {
		substituted = true
		entry.PlanType |= plan.PlanFillIn
		if sub.Teacher != les.Teacher {
			entry.ChangeTeacher = sub.Teacher
			entry.ChgType |= plan.ChangeTeacher
		}
		if sub.Subject != les.Subject {
			entry.ChangeSubject = sub.Subject
			entry.ChgType |= plan.ChangeSubject
		}
		if sub.Room != les.Room {
			entry.ChangeRoom = sub.Room
			entry.ChgType |= plan.ChangeRoom
		}
	}

	switch {
	case substituted:
		entry.PlanType |= plan.PlanFillIn
		entry.ChgType |= plan.ChangeStandin
	case occ == 'x' || les.Flag == 1:
		entry.PlanType |= plan.PlanFillIn
		entry.ChgType |= plan.ChangeFree | plan.ChangeStandin
		entry.Info = p.cfg.Texts.ReplaceFree
	default:
		entry.PlanType |= plan.PlanRegular
		entry.ChgType |= plan.ChangeRegular
	}
	return entry
}

// inferWholeDayCancellations finds (date, course) pairs whose generated
// hours are all free or cancelled. Nothing in the export states "class has
// the whole day off" directly; a day without a single surviving hour is
// that statement.
func (p *Parser) inferWholeDayCancellations() {
	type dayKey struct {
		date   string
		course string
	}
	tally := make(map[dayKey]int)
	order := []dayKey{}

	for _, entry := range p.standin {
		for _, date := range entry.Dates {
			for _, course := range entry.Course {
				key := dayKey{date, course}
				if _, seen := tally[key]; !seen {
					order = append(order, key)
					tally[key] = 0
				}
				if entry.ChgType&(plan.ChangeFree|plan.ChangeCancelled) == 0 {
					tally[key]++
				}
			}
		}
	}

	for _, key := range order {
		if tally[key] > 0 {
			continue
		}
		entry := plan.NewChangeEntry([]string{key.date}, plan.PlanCanceled, plan.ChangeCancelled)
		entry.Hours = []plan.TimeFrame{{Hour: 0}}
		entry.StartTime = "00:00:00"
		entry.EndTime = "23:59:59"
		entry.Course = []string{key.course}
		p.absentClasses = append(p.absentClasses, entry)
	}
}

func (p *Parser) parseSubstitutions(rows [][]string) {
	var subs []*substitution
	for _, row := range rows {
		if len(row) < 22 || row[0] != "VTD" {
			continue
		}
		sub := substitutionFromRow(row)
		if sub.relevant() {
			subs = append(subs, sub)
		}
	}

	now := p.Now()
	for _, sub := range subs {
		p.applySubstitution(sub, now)
	}
}

func substitutionFromRow(row []string) *substitution {
	clean := func(s string) string { return strings.TrimSpace(s) }
	nr, _ := strconv.Atoi(row[1])
	return &substitution{
		Nr:            nr,
		Type:          clean(row[2]),
		Date:          clean(row[3]),
		Day:           clean(row[4]),
		Hour:          clean(row[5]),
		Time:          clean(row[6]),
		Subject:       clean(row[7]),
		ChangeSubject: clean(row[8]),
		Teacher:       clean(row[9]),
		ChangeTeacher: clean(row[10]),
		ClassName:     clean(row[11]),
		Room:          clean(row[13]),
		ChangeRoom:    clean(row[14]),
		MovedInfo:     clean(row[16]),
		Notes:         clean(row[21]),
	}
}

func (p *Parser) applySubstitution(sub *substitution, now time.Time) {
	dt, err := sub.resolveDate(now)
	if err != nil {
		p.sink.AddWarning(fmt.Sprintf("substitution with unusable date %q - skipping", sub.Date))
		return
	}
	dtStr := dt.Format("02.01.2006")

	hour, err := strconv.Atoi(sub.Hour)
	if err != nil {
		p.sink.AddWarning(fmt.Sprintf("substitution with unusable hour %q - skipping", sub.Hour))
		return
	}

	var movedMatch []string
	movedDate := ""
	if sub.MovedInfo != "" {
		movedMatch = movedInfoPattern.FindStringSubmatch(sub.MovedInfo)
		if movedMatch == nil {
			// not usable, and notes-only handling below would attach the
			// wrong text
			return
		}
		day, _ := strconv.Atoi(movedMatch[2])
		month, _ := strconv.Atoi(movedMatch[3])
		movedDate = closestOccurrence(dt, day, month).Format("02.01.2006")
	}

	if sub.Notes != "" {
		for _, les := range p.standin {
			if les.Match(dtStr, hour, sub.Teacher, sub.Subject, sub.Room, false) {
				les.Note = sub.Notes
				break
			}
		}
	}

	if sub.MovedInfo == "" {
		return
	}

	movedHour, _ := strconv.Atoi(movedMatch[4])
	for _, les := range p.standin {
		if !les.MatchStandin(dtStr, hour, sub.Teacher, sub.Subject, sub.Room, false) {
			continue
		}

		// The original slot the lesson was moved out of; mark it and say
		// where its content went.
		for _, oles := range p.standin {
			if !oles.Match(movedDate, movedHour, sub.Teacher, sub.Subject, sub.Room, true) {
				continue
			}
			if target, err := time.Parse("02.01.2006", les.Dates[0]); err == nil && len(les.Hours) > 0 {
				oles.Note = fmt.Sprintf(p.cfg.Texts.Moved,
					shortWeekdays[int(target.Weekday())],
					strconv.Itoa(les.Hours[0].Hour)+".",
					target.Day(), int(target.Month()))
				oles.ChgType |= plan.ChangeMovedFrom
			}
			break
		}

		day, _ := strconv.Atoi(movedMatch[2])
		month, _ := strconv.Atoi(movedMatch[3])
		les.Note = fmt.Sprintf(p.cfg.Texts.MovedNote,
			movedMatch[1], movedMatch[4]+".", day, month)
		les.ChgType |= plan.ChangeMoved
		break
	}
}

// closestOccurrence resolves a year-less day/month reference against ref:
// the same-year, next-year and last-year candidates compete on absolute
// distance. The export repeats DD.MM. annually, so proximity is the only
// tie-breaker available.
func closestOccurrence(ref time.Time, day, month int) time.Time {
	best := time.Time{}
	bestDist := time.Duration(0)
	for _, year := range []int{ref.Year(), ref.Year() + 1, ref.Year() - 1} {
		candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location())
		dist := candidate.Sub(ref)
		if dist < 0 {
			dist = -dist
		}
		if best.IsZero() || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	return best
}

func (p *Parser) parseSupervisions(rows [][]string) {
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		flag, err := strconv.Atoi(row[5])
		if err != nil || flag <= 0 {
			continue
		}
		date, err := time.Parse("20060102", row[0])
		if err != nil {
			p.sink.AddWarning(fmt.Sprintf("supervision row with unusable date %q - skipping", row[0]))
			continue
		}
		hour, err := strconv.Atoi(row[1])
		if err != nil {
			p.sink.AddWarning(fmt.Sprintf("supervision row with unusable hour %q - skipping", row[1]))
			continue
		}

		tf, ok := p.timeFramesDuty.Find(int(date.Weekday()), hour)
		if !ok {
			p.sink.AddWarning(fmt.Sprintf(
				"no duty timeframe for weekday %d hour %d - skipping", int(date.Weekday()), hour))
			continue
		}

		chg := plan.ChangeDuty
		if flag == 2 {
			chg |= plan.ChangeFree
		}
		entry := plan.NewChangeEntry([]string{date.Format("02.01.2006")}, plan.PlanYardDuty, chg)
		entry.Hours = []plan.TimeFrame{tf}
		entry.StartTime = tf.Start
		entry.EndTime = tf.End
		entry.Teacher = row[3]
		entry.ChangeTeacher = row[4]
		entry.Info = row[2]
		p.supervision = append(p.supervision, entry)
	}
}

// PostParse is a no-op for this format.
func (p *Parser) PostParse() error {
	return nil
}

// Result concatenates inferred cancellations, supervisions and generated
// lesson entries with the serialized master data.
func (p *Parser) Result() *parser.Result {
	var entries []*plan.ChangeEntry
	entries = append(entries, p.absentClasses...)
	entries = append(entries, p.supervision...)
	entries = append(entries, p.standin...)

	classes := p.classList.Serialize()
	teachers := p.teacherList.Serialize()
	subjects := p.subjectList.Serialize()
	pupil := p.timeFramesPupil.Serialize()
	duty := p.timeFramesDuty.Serialize()

	return &parser.Result{
		Stand:    p.stand,
		Plan:     plan.FlattenAll(entries),
		PlanType: p.planType,
		Classes:  classes,
		Teachers: teachers,
		Subjects: subjects,
		Timeframes: map[string][]map[string]any{
			"pupil": pupil,
			"duty":  duty,
		},
		Hashes: map[string]string{
			"classes":  plan.HashSerialized(classes),
			"teacher":  plan.HashSerialized(teachers),
			"subjects": plan.HashSerialized(subjects),
			"pupil":    plan.HashSerialized(pupil),
			"duty":     plan.HashSerialized(duty),
		},
	}
}
