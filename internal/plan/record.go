package plan

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

// Record is one flattened plan record as uploaded to the collector. Field
// names follow the collector's wire format; absent values are carried as
// empty strings.
type Record struct {
	Type          int    `json:"type"`
	Date          string `json:"date"`
	Hour          int    `json:"hour"`
	StartTime     string `json:"starttime"`
	EndTime       string `json:"endtime"`
	CourseRef     string `json:"courseRef"`
	Teacher       string `json:"teacher"`
	Subject       string `json:"subject"`
	Room          string `json:"room"`
	ChgType       int    `json:"chgType"`
	Course        string `json:"course"`
	ChangeTeacher string `json:"chgteacher"`
	ChangeSubject string `json:"chgsubject"`
	ChangeRoom    string `json:"chgroom"`
	Notes         string `json:"notes"`
	Info          string `json:"info"`
	GUID          string `json:"guid"`
}

// guid derives the content-addressed identity of the record: a 128-bit
// digest over the canonical (sorted-key) JSON encoding of every field except
// the guid itself, rendered in UUID shape. The UUID form is cosmetic for
// downstream compatibility; the digest is the actual identity, so two
// records with identical content always collapse to the same guid.
func (r Record) guid() string {
	canonical := map[string]any{
		"type":       r.Type,
		"date":       r.Date,
		"hour":       r.Hour,
		"starttime":  r.StartTime,
		"endtime":    r.EndTime,
		"courseRef":  r.CourseRef,
		"teacher":    r.Teacher,
		"subject":    r.Subject,
		"room":       r.Room,
		"chgType":    r.ChgType,
		"course":     r.Course,
		"chgteacher": r.ChangeTeacher,
		"chgsubject": r.ChangeSubject,
		"chgroom":    r.ChangeRoom,
		"notes":      r.Notes,
		"info":       r.Info,
	}

	// encoding/json emits map keys sorted, which is exactly the canonical
	// form we need.
	data, err := json.Marshal(canonical)
	if err != nil {
		// Only unmarshalable types can end up here and the map above holds
		// none; keep the record usable regardless.
		data = []byte(r.Date + r.Course)
	}

	sum := md5.Sum(data)
	return uuid.UUID(sum).String()
}

// HashSerialized returns the hex sha256 over the canonical JSON encoding of
// a serialized entity or timetable list. Downstream consumers compare these
// hashes to detect master-data changes without diffing full payloads.
func HashSerialized(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
