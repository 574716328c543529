package davinci

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"vplan/internal/config"
	"vplan/internal/diag"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// JSONExtensions lists the file extensions the JSON parser handles.
var JSONExtensions = []string{".json"}

// Timeframe discriminators inside the master data. "Standard" carries the
// pupil lesson grid, "Aufsichten" the yard-duty grid.
const (
	timeframePupil = "Standard"
	timeframeDuty  = "Aufsichten"
)

type jsonEnvelope struct {
	Result *jsonResult `json:"result"`
}

type jsonResult struct {
	Teams               []jsonTeam           `json:"teams"`
	Classes             []jsonClass          `json:"classes"`
	Teachers            []jsonTeacher        `json:"teachers"`
	Subjects            []jsonSubject        `json:"subjects"`
	Timeframes          []jsonTimeframe      `json:"timeframes"`
	ClassAbsences       []jsonAbsence        `json:"classAbsences"`
	TeacherAbsences     []jsonAbsence        `json:"teacherAbsences"`
	ClassAbsenceReasons []jsonAbsenceReason  `json:"classAbsenceReasons"`
	DisplaySchedule     *jsonDisplaySchedule `json:"displaySchedule"`
}

type jsonTeam struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type jsonClass struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	TeamRefs []string `json:"teamRefs"`
}

type jsonTeacher struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type jsonSubject struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type jsonTimeframe struct {
	Code      string         `json:"code"`
	Timeslots []jsonTimeslot `json:"timeslots"`
}

type jsonTimeslot struct {
	Label     string `json:"label"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type jsonAbsence struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	ClassRef   string `json:"classRef"`
	TeacherRef string `json:"teacherRef"`
	ReasonRef  string `json:"reasonRef"`
	Note       string `json:"note"`
}

type jsonAbsenceReason struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type jsonDisplaySchedule struct {
	LessonTimes      []json.RawMessage `json:"lessonTimes"`
	SupervisionTimes []json.RawMessage `json:"supervisionTimes"`
}

type jsonLesson struct {
	LessonRef    string       `json:"lessonRef"`
	CourseRef    string       `json:"courseRef"`
	CourseTitle  string       `json:"courseTitle"`
	Dates        []string     `json:"dates"`
	StartTime    string       `json:"startTime"`
	EndTime      string       `json:"endTime"`
	SubjectCode  *string      `json:"subjectCode"`
	TeacherCodes []string     `json:"teacherCodes"`
	RoomCodes    []string     `json:"roomCodes"`
	ClassCodes   []string     `json:"classCodes"`
	AreaCode     string       `json:"areaCode"`
	Changes      *jsonChanges `json:"changes"`
}

type jsonChanges struct {
	ChangeType         int      `json:"changeType"`
	ReasonType         string   `json:"reasonType"`
	ReasonCode         string   `json:"reasonCode"`
	Caption            *string  `json:"caption"`
	Information        *string  `json:"information"`
	LessonTitle        string   `json:"lessonTitle"`
	Cancelled          string   `json:"cancelled"`
	NewSubjectCode     string   `json:"newSubjectCode"`
	NewTeacherCodes    []string `json:"newTeacherCodes"`
	NewRoomCodes       []string `json:"newRoomCodes"`
	AbsentTeacherCodes []string `json:"absentTeacherCodes"`
	AbsentRoomCodes    []string `json:"absentRoomCodes"`
}

// absenceDetail is one parsed classAbsences record kept for cross-reference
// when a later lesson record needs a human-readable absence note.
type absenceDetail struct {
	classRef  string
	reasonRef string
	start     time.Time
	end       time.Time
	note      string
}

// JSONParser consumes the JSON interface of DaVinci 6, which supports
// mostly all features: master data, class and teacher absences, standins
// and yard-duty swaps.
type JSONParser struct {
	cfg  *config.Config
	sink diag.Sink
	path string

	Now func() time.Time

	raw      []byte
	envelope jsonEnvelope
	rules    *captionRules
	stand    int64
	planType plan.PlanType

	classList   *plan.EntityList[plan.SchoolClass]
	teacherList *plan.EntityList[plan.Teacher]
	subjectList *plan.EntityList[plan.Subject]

	timeFramesPupil plan.Timetable
	timeFramesDuty  plan.Timetable
	teams           map[string]string
	absenceReasons  map[string]string
	absenceDetails  []absenceDetail

	absentClasses  []*plan.ChangeEntry
	absentTeachers []*plan.ChangeEntry
	supervision    []*plan.ChangeEntry
	standin        []*plan.ChangeEntry

	dupCount       int
	supersedeCount int
}

// NewJSON constructs the JSON parser for the given source file.
func NewJSON(cfg *config.Config, sink diag.Sink, path string) *JSONParser {
	return &JSONParser{
		cfg:  cfg,
		sink: sink,
		path: path,
		Now:  time.Now,
		planType: plan.PlanCanceled | plan.PlanFillIn |
			plan.PlanOutTeacher | plan.PlanYardDuty,
		classList:      plan.NewEntityList[plan.SchoolClass](),
		teacherList:    plan.NewEntityList[plan.Teacher](),
		subjectList:    plan.NewEntityList[plan.Subject](),
		teams:          make(map[string]string),
		absenceReasons: make(map[string]string),
	}
}

// LoadFile reads the raw source bytes.
func (p *JSONParser) LoadFile() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not read plan %s: %v", p.path, err))
		return err
	}
	p.raw = raw
	return nil
}

// PreParse decodes the JSON envelope (UTF-8 or UTF-8 with BOM), compiles
// the caption rules and records the parse timestamp.
func (p *JSONParser) PreParse() error {
	p.stand = p.Now().Unix()

	rules, err := newCaptionRules(p.cfg)
	if err != nil {
		p.sink.AddError(err.Error())
		return err
	}
	p.rules = rules

	encoding := p.cfg.Davinci.Encoding
	text, err := parser.DecodeBytes(p.raw, encoding)
	if err != nil {
		p.sink.AddError(fmt.Sprintf("could not decode plan %s: %v", p.path, err))
		return err
	}

	if err := json.Unmarshal([]byte(text), &p.envelope); err != nil {
		p.sink.AddError(fmt.Sprintf("could not parse the plan %s: %v", p.path, err))
		return fmt.Errorf("%w: %v", parser.ErrStructural, err)
	}
	if p.envelope.Result == nil {
		p.sink.AddError("plan is missing the result object")
		return fmt.Errorf("%w: missing result object", parser.ErrStructural)
	}
	return nil
}

// Parse runs the master data, absence, standin and yard-duty passes in
// order. Row-level problems skip the record with a diagnostic.
func (p *JSONParser) Parse() error {
	p.parseMasterData()
	p.parseClassAbsences()
	p.parseTeacherAbsences()
	p.parseStandin()
	p.parseYardDuty()

	if p.dupCount > 0 {
		p.sink.AddInfo(fmt.Sprintf("skipped %d byte-identical duplicate records", p.dupCount))
	}
	if p.supersedeCount > 0 {
		p.sink.AddInfo(fmt.Sprintf("discarded %d superseded records", p.supersedeCount))
	}
	return nil
}

func (p *JSONParser) parseMasterData() {
	res := p.envelope.Result

	for _, team := range res.Teams {
		p.teams[team.ID] = team.Description
	}

	for _, cl := range res.Classes {
		schoolClass := plan.SchoolClass{ID: cl.ID, Abbreviation: cl.Code}
		for _, ref := range cl.TeamRefs {
			if ref == "" {
				continue
			}
			if team, ok := p.teams[ref]; ok {
				schoolClass.Team = team
			}
		}
		p.classList.Append(schoolClass)
	}

	for _, t := range res.Teachers {
		p.teacherList.Append(plan.Teacher{
			ID:           t.ID,
			Abbreviation: t.Code,
			FirstName:    t.FirstName,
			LastName:     t.LastName,
		})
	}

	for _, s := range res.Subjects {
		p.subjectList.Append(plan.Subject{
			ID:           s.ID,
			Abbreviation: s.Code,
			Description:  s.Description,
		})
	}

	for _, tf := range res.Timeframes {
		if tf.Code != timeframePupil && tf.Code != timeframeDuty {
			continue
		}
		for _, slot := range tf.Timeslots {
			hour, err := strconv.Atoi(slot.Label)
			if err != nil {
				p.sink.AddWarning(fmt.Sprintf("timeslot with unusable label %q - skipping", slot.Label))
				continue
			}
			frame := plan.TimeFrame{
				Hour:  hour,
				Start: padHHMM(slot.StartTime),
				End:   padHHMM(slot.EndTime),
			}
			if tf.Code == timeframePupil {
				p.timeFramesPupil.Append(frame)
			} else {
				p.timeFramesDuty.Append(frame)
			}
		}
	}

	for _, reason := range res.ClassAbsenceReasons {
		if reason.Description != "" {
			p.absenceReasons[reason.ID] = reason.Description
			if reason.Code != "" {
				p.absenceReasons[reason.Code] = reason.Description
			}
		}
	}
}

func (p *JSONParser) parseClassAbsences() {
	for _, absence := range p.envelope.Result.ClassAbsences {
		days, ok := p.absenceDays(absence)
		if !ok {
			continue
		}

		course, found := p.classList.FindByID(absence.ClassRef)
		if !found {
			p.sink.AddData(fmt.Sprintf("%+v", absence))
			p.sink.AddError("course unknown for absent course - skipping")
			continue
		}

		p.rememberAbsenceDetail(absence)

		p.planType |= plan.PlanCanceled
		for _, day := range days {
			entry := plan.NewChangeEntry([]string{day}, plan.PlanCanceled, plan.ChangeCancelled)
			entry.Hours = []plan.TimeFrame{{Hour: 0}}
			entry.StartTime = "00:00:00"
			entry.EndTime = "23:59:59"
			entry.Course = []string{course.Abbreviation}
			p.absentClasses = append(p.absentClasses, entry)
		}
	}
}

func (p *JSONParser) parseTeacherAbsences() {
	for _, absence := range p.envelope.Result.TeacherAbsences {
		days, ok := p.absenceDays(absence)
		if !ok {
			continue
		}

		teacher, found := p.teacherList.FindByID(absence.TeacherRef)
		if !found {
			p.sink.AddData(fmt.Sprintf("%+v", absence))
			p.sink.AddError("teacher unknown for absent teachers - skipping")
			continue
		}

		p.planType |= plan.PlanOutTeacher
		for _, day := range days {
			entry := plan.NewChangeEntry([]string{day}, plan.PlanOutTeacher, plan.ChangeTeacherAway)
			entry.Hours = []plan.TimeFrame{{Hour: 0}}
			entry.StartTime = "00:00:00"
			entry.EndTime = "23:59:59"
			entry.Teacher = teacher.Abbreviation
			p.absentTeachers = append(p.absentTeachers, entry)
		}
	}
}

// absenceDays expands a whole-day absence window into one DD.MM.YYYY string
// per calendar day. Absences with a partial-day time window are not
// supported and reported as a debug diagnostic.
func (p *JSONParser) absenceDays(absence jsonAbsence) ([]string, bool) {
	if absence.StartTime != "0000" || absence.EndTime != "0000" {
		p.sink.AddDebug(fmt.Sprintf(
			"don't support start/end time for absences - skipping: %+v", absence))
		return nil, false
	}

	start, err := time.Parse("20060102", absence.StartDate)
	if err != nil {
		p.sink.AddWarning(fmt.Sprintf("absence with unusable start date %q - skipping", absence.StartDate))
		return nil, false
	}
	end, err := time.Parse("20060102", absence.EndDate)
	if err != nil {
		p.sink.AddWarning(fmt.Sprintf("absence with unusable end date %q - skipping", absence.EndDate))
		return nil, false
	}
	if end.Before(start) {
		p.sink.AddWarning(fmt.Sprintf("absence ends before it starts - skipping: %+v", absence))
		return nil, false
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Until:   end,
	})
	if err != nil {
		p.sink.AddWarning(fmt.Sprintf("could not expand absence span: %v", err))
		return nil, false
	}

	var days []string
	for _, day := range rule.All() {
		days = append(days, day.Format("02.01.2006"))
	}
	return days, len(days) > 0
}

func (p *JSONParser) rememberAbsenceDetail(absence jsonAbsence) {
	start, err1 := time.Parse("20060102", absence.StartDate)
	end, err2 := time.Parse("20060102", absence.EndDate)
	if err1 != nil || err2 != nil {
		return
	}
	p.absenceDetails = append(p.absenceDetails, absenceDetail{
		classRef:  absence.ClassRef,
		reasonRef: absence.ReasonRef,
		start:     start,
		end:       end,
		note:      absence.Note,
	})
}

func (p *JSONParser) parseStandin() {
	if p.envelope.Result.DisplaySchedule == nil {
		return
	}

	seen := make(map[string]struct{})
	baseline := p.baselineKeys()

	for _, raw := range p.envelope.Result.DisplaySchedule.LessonTimes {
		// Byte-identical repeats are dropped up front, before any field
		// interpretation happens.
		digest := rawDigest(raw)
		if _, dup := seen[digest]; dup {
			p.dupCount++
			continue
		}
		seen[digest] = struct{}{}

		var les jsonLesson
		if err := json.Unmarshal(raw, &les); err != nil {
			p.sink.AddData(string(raw))
			p.sink.AddWarning(fmt.Sprintf("unreadable lesson record - skipping: %v", err))
			continue
		}
		if les.Changes == nil {
			continue
		}

		if les.Changes.ChangeType > 0 {
			if _, exists := baseline[supersedeKey(les)]; exists {
				p.supersedeCount++
				continue
			}
		}

		p.parseStandinRecord(les)
	}
}

// baselineKeys collects the supersede keys of every record whose changeType
// is zero. A generic record (changeType > 0) is dropped when a specific
// twin exists under the same key.
func (p *JSONParser) baselineKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, raw := range p.envelope.Result.DisplaySchedule.LessonTimes {
		var les jsonLesson
		if err := json.Unmarshal(raw, &les); err != nil {
			continue
		}
		if les.Changes == nil || les.Changes.ChangeType != 0 {
			continue
		}
		keys[supersedeKey(les)] = struct{}{}
	}
	return keys
}

func supersedeKey(les jsonLesson) string {
	return strings.Join([]string{
		les.LessonRef,
		les.CourseRef,
		les.StartTime,
		strings.Join(les.Dates, ","),
		strings.Join(les.ClassCodes, ","),
		strings.Join(les.RoomCodes, ","),
		strings.Join(les.TeacherCodes, ","),
	}, "|")
}

func (p *JSONParser) parseStandinRecord(les jsonLesson) {
	changes := les.Changes

	entryDates := make([]string, 0, len(les.Dates))
	for _, d := range les.Dates {
		entryDates = append(entryDates, reformatDate(d))
	}

	p.planType |= plan.PlanFillIn
	entry := plan.NewChangeEntry(entryDates, plan.PlanFillIn, 0)
	entry.StartTime = clockTime(les.StartTime)
	entry.EndTime = clockTime(les.EndTime)
	entry.CourseRef = les.CourseRef

	frames := p.timeFramesPupil.FindByTime(les.StartTime, les.EndTime, 0)
	if len(frames) == 0 {
		p.sink.AddData(fmt.Sprintf("%+v", les))
		p.sink.AddError(fmt.Sprintf(
			"could not find a proper lesson for time: %s to %s - skipping",
			entry.StartTime, entry.EndTime))
		return
	}
	entry.Hours = frames

	// A classAbsence with a concrete start time is not a whole-day absence
	// but a free period; misreading that would misinterpret the data.
	caption := changes.Caption
	if changes.ReasonType == "classAbsence" && les.StartTime != "" && les.StartTime != "0000" {
		changes.ReasonType = "classFree"
		if caption != nil && *caption == p.cfg.Texts.ClassAbsent {
			replaced := p.cfg.Texts.ReplaceFree
			caption = &replaced
		}
	}

	// If there is no explicit note, recover the absence reason for the
	// class so the plan still tells the reader why.
	if (changes.ReasonType == "classAbsence" || changes.ReasonType == "classFree") &&
		changes.Information == nil && changes.ReasonCode != "" {
		if desc, ok := p.absenceReasons[changes.ReasonCode]; ok {
			changes.Information = &desc
		} else if note := p.absenceNoteFor(les, changes.ReasonCode); note != "" {
			changes.Information = &note
		}
	}

	tolerantAbsence := changes.ReasonType == "classAbsence" || changes.ReasonType == "classFree"

	// Subject; an ad-hoc lesson carries its title inside the change block.
	switch {
	case les.SubjectCode != nil:
		entry.Subject = *les.SubjectCode
	case changes.LessonTitle != "":
		entry.Subject = changes.LessonTitle
	case !tolerantAbsence:
		p.sink.AddData(fmt.Sprintf("%+v", les))
		p.sink.AddWarning(`could not find "subjectCode" (subject) in record - skipping`)
		return
	}
	if changes.NewSubjectCode != "" {
		entry.ChangeSubject = changes.NewSubjectCode
		entry.ChgType |= plan.ChangeSubject
	}

	// The teacher (strange that it is a list).
	switch {
	case len(les.TeacherCodes) > 0:
		entry.Teacher = les.TeacherCodes[0]
	case len(changes.AbsentTeacherCodes) > 0:
		entry.Teacher = changes.AbsentTeacherCodes[0]
	case !tolerantAbsence:
		p.sink.AddData(fmt.Sprintf("%+v", les))
		p.sink.AddWarning(`could not find "teacherCodes" (teacher) in record - skipping`)
		return
	}
	if len(changes.NewTeacherCodes) > 0 {
		entry.ChangeTeacher = changes.NewTeacherCodes[0]
		entry.ChgType |= plan.ChangeTeacher
	}

	// absentRoomCodes has higher priority than the normal room codes. A
	// record without any room is fine for class absences; remote lessons
	// have none.
	roomCodes := les.RoomCodes
	if len(changes.AbsentRoomCodes) > 0 {
		roomCodes = changes.AbsentRoomCodes
	}
	switch {
	case len(roomCodes) > 0:
		entry.Room = roomCodes[0]
	case !tolerantAbsence:
		p.sink.AddData(fmt.Sprintf("%+v", les))
		p.sink.AddWarning(`could not find "roomCodes" (room) in record - skipping`)
		return
	}
	if len(changes.NewRoomCodes) > 0 {
		entry.ChangeRoom = changes.NewRoomCodes[0]
		entry.ChgType |= plan.ChangeRoom
	}

	if len(les.ClassCodes) == 0 {
		p.sink.AddData(fmt.Sprintf("%+v", les))
		p.sink.AddWarning(`could not find "classCodes" (course) in record - skipping`)
		return
	}
	entry.Course = append(entry.Course, les.ClassCodes...)

	if caption != nil {
		entry.Info = *caption
		if changes.Information != nil {
			entry.Note = *changes.Information
		}
	} else if changes.Information != nil {
		entry.Info = *changes.Information
	}

	switch changes.Cancelled {
	case "movedAway":
		entry.ChgType |= plan.ChangeMoved
		if caption != nil {
			p.rules.applyMovedTo(entry, *caption)
		}
	case "classFree":
		entry.ChgType |= plan.ChangeFree
		if entry.Info == "" && entry.Note == "" {
			entry.Info = p.cfg.Texts.ReplaceFree
		}
	}

	if caption != nil {
		p.rules.applyMovedFrom(entry, *caption)
	}

	p.rules.stripDiscardable(entry)

	// A new lesson replacing an old one without a reference: the original
	// slot has to be guessed, if that is wanted at all.
	if les.LessonRef == "" &&
		entry.Teacher == entry.ChangeTeacher && entry.Room == entry.ChangeRoom {
		if !p.cfg.Davinci.GuessOriginalLesson {
			p.sink.AddData(fmt.Sprintf("%+v", les))
			p.sink.AddInfo(`no lesson reference given and the "guess" algorithm is disabled - skipping`)
			return
		}
		p.guessOriginalLesson(entry)
	}

	p.standin = append(p.standin, entry)
}

// absenceNoteFor cross-references the parsed classAbsences detail records
// for the lesson's class and reason whose date range contains the lesson's
// first date. The reason must match too, otherwise an overlapping absence
// for an unrelated reason would lend its note to this lesson.
func (p *JSONParser) absenceNoteFor(les jsonLesson, reasonCode string) string {
	if len(les.Dates) == 0 || len(les.ClassCodes) == 0 {
		return ""
	}
	date, err := time.Parse("20060102", les.Dates[0])
	if err != nil {
		return ""
	}

	course, ok := p.classList.Find(les.ClassCodes[0])
	if !ok {
		return ""
	}

	for _, detail := range p.absenceDetails {
		if detail.classRef != course.ID || detail.reasonRef != reasonCode || detail.note == "" {
			continue
		}
		if !date.Before(detail.start) && !date.After(detail.end) {
			return detail.note
		}
	}
	return ""
}

// guessOriginalLesson recovers the original slot for a reference-less
// record from the standins generated so far on the same (date, course,
// hour). When nothing matches, the record stays flagged unresolved; a wrong
// silent match would be worse than none.
func (p *JSONParser) guessOriginalLesson(entry *plan.ChangeEntry) {
	p.sink.AddInfo("found something to guess")

	if len(entry.Dates) == 0 || len(entry.Course) == 0 || len(entry.Hours) == 0 {
		return
	}
	date, course, hour := entry.Dates[0], entry.Course[0], entry.Hours[0].Hour

	for _, existing := range p.standin {
		if existing == entry {
			continue
		}
		if !existing.HasSlot(date, course, hour) {
			continue
		}
		entry.Teacher = existing.Teacher
		entry.Room = existing.Room
		if entry.Subject == "" {
			entry.Subject = existing.Subject
		}
		entry.ChgType = 0
		return
	}

	p.sink.AddInfo(fmt.Sprintf(
		"no original lesson found for %s / %s / hour %d - left unresolved", date, course, hour))
}

func (p *JSONParser) parseYardDuty() {
	if p.envelope.Result.DisplaySchedule == nil {
		return
	}

	for _, raw := range p.envelope.Result.DisplaySchedule.SupervisionTimes {
		var les jsonLesson
		if err := json.Unmarshal(raw, &les); err != nil {
			p.sink.AddData(string(raw))
			p.sink.AddWarning(fmt.Sprintf("unreadable supervision record - skipping: %v", err))
			continue
		}
		if les.Changes == nil {
			continue
		}

		entryDates := make([]string, 0, len(les.Dates))
		for _, d := range les.Dates {
			entryDates = append(entryDates, reformatDate(d))
		}

		p.planType |= plan.PlanYardDuty
		entry := plan.NewChangeEntry(entryDates, plan.PlanYardDuty, plan.ChangeDuty)
		entry.StartTime = clockTime(les.StartTime)
		entry.EndTime = clockTime(les.EndTime)
		entry.Hours = p.timeFramesDuty.FindByTime(les.StartTime, les.EndTime, 0)
		entry.Info = les.AreaCode

		if len(les.Changes.AbsentTeacherCodes) == 0 {
			p.sink.AddData(fmt.Sprintf("%+v", les))
			p.sink.AddWarning("cannot parse yard change due missing old teacher - skipping")
			continue
		}
		if len(les.TeacherCodes) == 0 {
			p.sink.AddData(fmt.Sprintf("%+v", les))
			p.sink.AddWarning("cannot parse yard change due missing new teacher - skipping")
			continue
		}

		entry.Teacher = les.Changes.AbsentTeacherCodes[0]
		entry.ChangeTeacher = les.TeacherCodes[0]
		p.supervision = append(p.supervision, entry)
	}
}

// PostParse is a no-op for this format.
func (p *JSONParser) PostParse() error {
	return nil
}

// Result concatenates the per-category entries in their fixed order and
// attaches the serialized master data with content hashes.
func (p *JSONParser) Result() *parser.Result {
	var entries []*plan.ChangeEntry
	entries = append(entries, p.absentClasses...)
	entries = append(entries, p.absentTeachers...)
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

func rawDigest(raw json.RawMessage) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func padHHMM(t string) string {
	if len(t) > 4 {
		return t
	}
	return t + "00"
}
