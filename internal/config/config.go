package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Patterns holds the regex micro-languages used to recover structured fields
// from free-text captions. The named capture groups are a stable contract:
//
//   - moved_to / moved_from: groups "day", "month", "weekday", "hourfrom"
//     and optionally "hourto" describe the referenced slot of a moved
//     lesson.
//   - new_old: either groups "new" and "old" match a "new (old)" value
//     pair, or group "bare" matches a plain name (no change, old = new).
//   - classes: group "absent" matches the parenthesized absent-class list,
//     group "present" the comma-separated affected-but-present classes.
//
// These encode real business rules of the source systems, not incidental
// parsing convenience; change them only together with the exporting side.
type Patterns struct {
	MovedTo   string `yaml:"moved_to" json:"moved_to"`
	MovedFrom string `yaml:"moved_from" json:"moved_from"`
	NewOld    string `yaml:"new_old" json:"new_old"`
	Classes   string `yaml:"classes" json:"classes"`
}

// Texts holds the locale-specific replacement templates. Moved and
// MovedNote are fmt templates applied as (weekday string, hours string,
// day int, month int).
type Texts struct {
	Moved        string   `yaml:"moved" json:"moved"`
	MovedNote    string   `yaml:"moved_note" json:"moved_note"`
	ReplaceFree  string   `yaml:"replace_free" json:"replace_free"`
	ClassAbsent  string   `yaml:"class_absent" json:"class_absent"`
	DiscardInfos []string `yaml:"discard_infos" json:"discard_infos"`
}

// DavinciConfig configures both DaVinci parsers.
type DavinciConfig struct {
	// Encoding overrides the decode fallback chain; empty means automatic.
	Encoding string `yaml:"encoding" json:"encoding"`
	// GuessOriginalLesson enables the heuristic recovery of an original
	// lesson when a change record carries no lesson reference.
	GuessOriginalLesson bool `yaml:"guess_original_lesson" json:"guess_original_lesson"`
}

// UntisConfig configures the Untis multi-file parser.
type UntisConfig struct {
	Encoding string `yaml:"encoding" json:"encoding"`
	// Weeks is the number of forthcoming weeks to generate entries for.
	Weeks int `yaml:"weeks" json:"weeks"`
	// FileTimeoutSeconds bounds the wait for the export's companion files;
	// the export tool writes them non-atomically.
	FileTimeoutSeconds  int `yaml:"file_timeout_seconds" json:"file_timeout_seconds"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds" json:"poll_interval_seconds"`
}

// FlsConfig configures the CSV "simple" dialect parser.
type FlsConfig struct {
	Encoding string `yaml:"encoding" json:"encoding"`
}

// LegacyConfig configures the legacy HTML/PDF parser.
type LegacyConfig struct {
	// MissingClassesMarker starts a per-day block of absent classes in the
	// PDF text layout.
	MissingClassesMarker string `yaml:"missing_classes_marker" json:"missing_classes_marker"`
	// WeekdayNames are the day-boundary markers, in source-locale spelling.
	WeekdayNames []string `yaml:"weekday_names" json:"weekday_names"`
}

// Config is the top-level configuration consumed by the parsing core.
type Config struct {
	Patterns Patterns      `yaml:"patterns" json:"patterns"`
	Texts    Texts         `yaml:"texts" json:"texts"`
	Davinci  DavinciConfig `yaml:"davinci" json:"davinci"`
	Untis    UntisConfig   `yaml:"untis" json:"untis"`
	Fls      FlsConfig     `yaml:"fls" json:"fls"`
	Legacy   LegacyConfig  `yaml:"legacy" json:"legacy"`
}

// DefaultConfig returns the in-memory default configuration. The regex and
// text defaults match the FLS deployment's DaVinci/Untis exports.
func DefaultConfig() *Config {
	return &Config{
		Patterns: Patterns{
			MovedTo:   `^Verlegt auf den (?P<day>\d{1,2})\.(?P<month>\d{1,2})\., (?P<weekday>\p{L}{2}) \((?P<hourfrom>\d{1,2})\.(?:-(?P<hourto>\d{1,2})\.)? Std\)$`,
			MovedFrom: `^Verlegt von dem (?P<day>\d{1,2})\.(?P<month>\d{1,2})\., (?P<weekday>\p{L}{2}) \((?P<hourfrom>\d{1,2})\.(?:-(?P<hourto>\d{1,2})\.)? Std\)$`,
			NewOld:    `^(?:(?P<new>[^()]+?) \((?P<old>[^()]+)\)|(?P<bare>[^()]+))$`,
			Classes:   `^(?:\((?P<absent>[^)]*)\)[,\s]*)?(?P<present>.*)$`,
		},
		Texts: Texts{
			Moved:       "Verschoben auf %s, %s Stunde (%d.%d.)",
			MovedNote:   "Verschoben von %s, %s Stunde (%d.%d.)",
			ReplaceFree: "Unterrichtsfrei",
			ClassAbsent: "Klasse abwesend",
			DiscardInfos: []string{
				"Bitte Aushang beachten",
			},
		},
		Davinci: DavinciConfig{
			Encoding:            "",
			GuessOriginalLesson: false,
		},
		Untis: UntisConfig{
			Encoding:            "",
			Weeks:               2,
			FileTimeoutSeconds:  10,
			PollIntervalSeconds: 1,
		},
		Fls: FlsConfig{Encoding: ""},
		Legacy: LegacyConfig{
			MissingClassesMarker: "Abwesende Klassen",
			WeekdayNames: []string{
				"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag",
				"Samstag", "Sonntag",
			},
		},
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs from older versions still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Patterns.MovedTo == "" {
		c.Patterns.MovedTo = def.Patterns.MovedTo
	}
	if c.Patterns.MovedFrom == "" {
		c.Patterns.MovedFrom = def.Patterns.MovedFrom
	}
	if c.Patterns.NewOld == "" {
		c.Patterns.NewOld = def.Patterns.NewOld
	}
	if c.Patterns.Classes == "" {
		c.Patterns.Classes = def.Patterns.Classes
	}

	if c.Texts.Moved == "" {
		c.Texts.Moved = def.Texts.Moved
	}
	if c.Texts.MovedNote == "" {
		c.Texts.MovedNote = def.Texts.MovedNote
	}
	if c.Texts.ReplaceFree == "" {
		c.Texts.ReplaceFree = def.Texts.ReplaceFree
	}
	if c.Texts.ClassAbsent == "" {
		c.Texts.ClassAbsent = def.Texts.ClassAbsent
	}
	if c.Texts.DiscardInfos == nil {
		c.Texts.DiscardInfos = def.Texts.DiscardInfos
	}

	if c.Untis.Weeks <= 0 {
		c.Untis.Weeks = def.Untis.Weeks
	}
	if c.Untis.FileTimeoutSeconds <= 0 {
		c.Untis.FileTimeoutSeconds = def.Untis.FileTimeoutSeconds
	}
	if c.Untis.PollIntervalSeconds <= 0 {
		c.Untis.PollIntervalSeconds = def.Untis.PollIntervalSeconds
	}

	if c.Legacy.MissingClassesMarker == "" {
		c.Legacy.MissingClassesMarker = def.Legacy.MissingClassesMarker
	}
	if len(c.Legacy.WeekdayNames) == 0 {
		c.Legacy.WeekdayNames = def.Legacy.WeekdayNames
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600)
//     and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to the given path atomically (temp file +
// rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".vplan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
