// Package davinci parses the two DaVinci standin plan exports: the older
// day-substitution XML dialect and the JSON interface of DaVinci 6.
package davinci

import (
	"fmt"
	"regexp"
	"strconv"

	"vplan/internal/config"
	"vplan/internal/parser"
	"vplan/internal/plan"
)

// captionRules bundles the compiled caption regexes and replacement texts
// shared by both DaVinci parsers. Better don't ask which caption
// possibilities the source system has.
type captionRules struct {
	movedTo   *regexp.Regexp
	movedFrom *regexp.Regexp
	texts     config.Texts
}

func newCaptionRules(cfg *config.Config) (*captionRules, error) {
	movedTo, err := regexp.Compile(cfg.Patterns.MovedTo)
	if err != nil {
		return nil, fmt.Errorf("%w: moved_to pattern: %v", parser.ErrStructural, err)
	}
	movedFrom, err := regexp.Compile(cfg.Patterns.MovedFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: moved_from pattern: %v", parser.ErrStructural, err)
	}
	return &captionRules{
		movedTo:   movedTo,
		movedFrom: movedFrom,
		texts:     cfg.Texts,
	}, nil
}

// applyMovedTo rewrites the entry when the caption says the lesson was moved
// away to another slot. Returns true on a match.
func (r *captionRules) applyMovedTo(entry *plan.ChangeEntry, caption string) bool {
	groups, ok := namedGroups(r.movedTo, caption)
	if !ok {
		return false
	}
	entry.Info = ""
	entry.Note = movedText(r.texts.Moved, groups)
	entry.ChgType |= plan.ChangeMoved
	return true
}

// applyMovedFrom rewrites the entry when the caption says the lesson was
// moved in from another slot. Returns true on a match.
func (r *captionRules) applyMovedFrom(entry *plan.ChangeEntry, caption string) bool {
	groups, ok := namedGroups(r.movedFrom, caption)
	if !ok {
		return false
	}
	entry.Info = ""
	entry.Note = movedText(r.texts.MovedNote, groups)
	entry.ChgType |= plan.ChangeMovedFrom
	return true
}

// stripDiscardable clears the info field when it matches one of the
// configured informational captions exactly.
func (r *captionRules) stripDiscardable(entry *plan.ChangeEntry) {
	if entry.Info == "" {
		return
	}
	for _, discard := range r.texts.DiscardInfos {
		if entry.Info == discard {
			entry.Info = ""
			return
		}
	}
}

// movedText renders a moved template with (weekday, hours, day, month) from
// the caption regex groups.
func movedText(template string, groups map[string]string) string {
	hourText := groups["hourfrom"] + "."
	if groups["hourto"] != "" {
		hourText = fmt.Sprintf("%s.-%s.", groups["hourfrom"], groups["hourto"])
	}
	day, _ := strconv.Atoi(groups["day"])
	month, _ := strconv.Atoi(groups["month"])
	return fmt.Sprintf(template, groups["weekday"], hourText, day, month)
}

// namedGroups matches s against re and returns the named capture groups.
func namedGroups(re *regexp.Regexp, s string) (map[string]string, bool) {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return nil, false
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups, true
}

// reformatDate converts a source-side YYYYMMDD date into DD.MM.YYYY.
func reformatDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[6:] + "." + d[4:6] + "." + d[:4]
}

// clockTime converts a source-side HHMM time into HH:MM:00.
func clockTime(t string) string {
	if len(t) < 4 {
		return t
	}
	return t[:2] + ":" + t[2:4] + ":00"
}
