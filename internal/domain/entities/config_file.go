package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// LineKind tags a single line of a configuration file.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineAssignment
	// LineDisabled is a commented-out assignment: "# KEY=value" or "# KEY is not set".
	LineDisabled
	LineOther
)

var (
	assignmentPattern = regexp.MustCompile(`^\s*([A-Za-z0-9_]+)=(.*)$`)
	disabledPattern   = regexp.MustCompile(`^\s*#\s*([A-Za-z0-9_]+)=(.*)$`)
	notSetPattern     = regexp.MustCompile(`^\s*#\s*([A-Za-z0-9_]+) is not set\s*$`)
)

// ConfigLine is one parsed line. Raw is always written back verbatim.
type ConfigLine struct {
	Kind  LineKind
	Raw   string
	Key   string
	Value string
}

// ParseConfigLine classifies a single line.
func ParseConfigLine(raw string) ConfigLine {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return ConfigLine{Kind: LineBlank, Raw: raw}
	case assignmentPattern.MatchString(raw):
		m := assignmentPattern.FindStringSubmatch(raw)
		return ConfigLine{Kind: LineAssignment, Raw: raw, Key: m[1], Value: m[2]}
	case notSetPattern.MatchString(raw):
		m := notSetPattern.FindStringSubmatch(raw)
		return ConfigLine{Kind: LineDisabled, Raw: raw, Key: m[1], Value: "n"}
	case disabledPattern.MatchString(raw):
		m := disabledPattern.FindStringSubmatch(raw)
		return ConfigLine{Kind: LineDisabled, Raw: raw, Key: m[1], Value: m[2]}
	case strings.HasPrefix(trimmed, "#"):
		return ConfigLine{Kind: LineComment, Raw: raw}
	default:
		return ConfigLine{Kind: LineOther, Raw: raw}
	}
}

// ConfigValueKind distinguishes how a value is rendered on the right-hand side.
type ConfigValueKind int

const (
	ValueBool ConfigValueKind = iota
	ValueQuoted
	ValueBare
)

// ConfigValue is the right-hand side of a toggle assignment.
type ConfigValue struct {
	Kind ConfigValueKind
	Raw  string
}

// BoolValue renders as y or n.
func BoolValue(enabled bool) ConfigValue {
	if enabled {
		return ConfigValue{Kind: ValueBool, Raw: "y"}
	}
	return ConfigValue{Kind: ValueBool, Raw: "n"}
}

// ParseConfigValue classifies a raw value: "y" and "n" are booleans, a value
// delimited by double quotes is kept as-is, anything else is a bare token.
func ParseConfigValue(raw string) ConfigValue {
	switch {
	case raw == "y" || raw == "n":
		return ConfigValue{Kind: ValueBool, Raw: raw}
	case len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`):
		return ConfigValue{Kind: ValueQuoted, Raw: raw}
	default:
		return ConfigValue{Kind: ValueBare, Raw: raw}
	}
}

// Format returns the text written after "KEY=". Bare tokens get wrapped in quotes.
func (v ConfigValue) Format() string {
	if v.Kind == ValueBare {
		return `"` + v.Raw + `"`
	}
	return v.Raw
}

// ConfigFile is an in-memory, line-ordered view of a KEY=value file.
type ConfigFile struct {
	path  string
	lines []ConfigLine
	// trailingNewline records whether the source ended with "\n" so a
	// save without changes is byte-identical.
	trailingNewline bool
}

// ParseConfigFile builds a ConfigFile from content without touching the disk.
func ParseConfigFile(path, content string) *ConfigFile {
	file := &ConfigFile{path: path, trailingNewline: true}
	if content == "" {
		return file
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	file.trailingNewline = strings.HasSuffix(content, "\n")
	for _, raw := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		file.lines = append(file.lines, ParseConfigLine(raw))
	}
	return file
}

// OpenConfigFile reads path. The file must exist; a missing file is a
// precondition failure because compilation depends on it.
func OpenConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: file %q does not exist", ErrPrecondition, path)
		}
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return ParseConfigFile(path, string(data)), nil
}

// Path returns the file location on disk.
func (f *ConfigFile) Path() string { return f.path }

// String serializes the file, keeping untouched lines verbatim.
func (f *ConfigFile) String() string {
	if len(f.lines) == 0 {
		return ""
	}
	raws := make([]string, len(f.lines))
	for i, line := range f.lines {
		raws[i] = line.Raw
	}
	content := strings.Join(raws, "\n")
	if f.trailingNewline {
		content += "\n"
	}
	return content
}

// Save replaces the file on disk through a temporary sibling and a rename, so
// an interrupted write leaves the previous content intact. Existing
// permissions are kept.
func (f *ConfigFile) Save() error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: failed to write %q: %v", ErrPrecondition, f.path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err = tmp.WriteString(f.String()); err == nil {
		err = tmp.Chmod(mode)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, f.path)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to write %q: %v", ErrPrecondition, f.path, err)
	}
	return nil
}

// Contains reports whether a line equal to line exists.
func (f *ConfigFile) Contains(line string) bool {
	for _, existing := range f.lines {
		if existing.Raw == line {
			return true
		}
	}
	return false
}

// ActiveValues returns the values of every active assignment of key, in file order.
func (f *ConfigFile) ActiveValues(key string) []string {
	var values []string
	for _, line := range f.lines {
		if line.Kind == LineAssignment && line.Key == key {
			values = append(values, line.Value)
		}
	}
	return values
}

// AppendUnique appends line unless an identical line already exists.
// The match is literal over the whole line; it does not look at keys.
// It reports whether the file changed.
func (f *ConfigFile) AppendUnique(line string) bool {
	if f.Contains(line) {
		return false
	}
	f.lines = append(f.lines, ParseConfigLine(line))
	f.trailingNewline = true
	return true
}

// InsertUniqueBefore inserts line right before the last line whose trimmed text
// equals anchor, or appends it when the anchor is absent. Nothing happens when
// line is already present.
func (f *ConfigFile) InsertUniqueBefore(line, anchor string) bool {
	if f.Contains(line) {
		return false
	}
	at := -1
	for i := len(f.lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(f.lines[i].Raw) == anchor {
			at = i
			break
		}
	}
	if at < 0 {
		return f.AppendUnique(line)
	}

	lines := make([]ConfigLine, 0, len(f.lines)+1)
	lines = append(lines, f.lines[:at]...)
	lines = append(lines, ParseConfigLine(line))
	lines = append(lines, f.lines[at:]...)
	f.lines = lines
	return true
}

// SetToggle removes every line, active or commented out, that assigns key and
// appends a single "key=value" line. A file already holding exactly that one
// line for key is left as it is. It reports whether the file changed.
func (f *ConfigFile) SetToggle(key string, value ConfigValue) bool {
	wanted := key + "=" + value.Format()

	var matches []int
	for i, line := range f.lines {
		if (line.Kind == LineAssignment || line.Kind == LineDisabled) && line.Key == key {
			matches = append(matches, i)
		}
	}
	if len(matches) == 1 && f.lines[matches[0]].Raw == wanted {
		return false
	}

	kept := f.lines[:0:0]
	for i, line := range f.lines {
		if len(matches) > 0 && i == matches[0] {
			matches = matches[1:]
			continue
		}
		kept = append(kept, line)
	}
	f.lines = append(kept, ParseConfigLine(wanted))
	f.trailingNewline = true
	return true
}

// AppendUniqueLine opens path, appends line if absent, and writes the file back.
func AppendUniqueLine(path, line string) (bool, error) {
	file, err := OpenConfigFile(path)
	if err != nil {
		return false, err
	}
	if !file.AppendUnique(line) {
		return false, nil
	}
	return true, file.Save()
}
