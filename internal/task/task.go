// Package task defines the task record analyzed by the priority engine and
// the repositories that persist it.
package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the wire format of a due date.
const DateLayout = "2006-01-02"

// ID identifies a task. Stored tasks carry their row id; tasks supplied ad hoc
// without one get their 1-based position in the request.
type ID string

// String returns the id as text.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// MarshalJSON emits numeric ids as JSON numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parse task id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parse task id: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("task id %s is not an integer", n)
	}
	*id = ID(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("task id must be a scalar, line %d", value.Line)
	}
	*id = ID(strings.TrimSpace(value.Value))
	return nil
}

// Date is a calendar date without time of day.
type Date struct {
	t time.Time
}

// NewDate returns the date y-m-d.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

// AddDays returns the date n days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the number of days from d to other, negative when other
// is in the past.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	if len(bytes.TrimSpace(text)) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalYAML accepts a YYYY-MM-DD scalar.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Task is a single unit of work.
type Task struct {
	ID             ID      `json:"id"                   yaml:"id"`
	Title          string  `json:"title"                yaml:"title"`
	DueDate        Date    `json:"due_date"             yaml:"due_date"`
	EstimatedHours float64 `json:"estimated_hours"      yaml:"estimated_hours"`
	Importance     int     `json:"importance"           yaml:"importance"`
	Dependencies   []ID    `json:"dependencies"         yaml:"dependencies"`
	CreatedAt      string  `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt      string  `json:"updated_at,omitempty" yaml:"-"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	cp := t
	if t.Dependencies != nil {
		cp.Dependencies = append([]ID(nil), t.Dependencies...)
	}
	return cp
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Title          *string  `json:"title,omitempty"`
	DueDate        *Date    `json:"due_date,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Importance     *int     `json:"importance,omitempty"`
	Dependencies   *[]ID    `json:"dependencies,omitempty"`
}

// Apply returns t with the patch applied.
func (p Patch) Apply(t Task) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}
	if p.EstimatedHours != nil {
		out.EstimatedHours = *p.EstimatedHours
	}
	if p.Importance != nil {
		out.Importance = *p.Importance
	}
	if p.Dependencies != nil {
		out.Dependencies = dedupe(*p.Dependencies)
	}
	return out
}

// Normalize returns a private copy of tasks ready for analysis: titles are
// trimmed, tasks without an id get their 1-based position and dependency
// lists are de-duplicated preserving their order. A positional id already
// used explicitly elsewhere in the set is skipped in favour of the next
// free number.
func Normalize(tasks []Task) []Task {
	taken := make(map[ID]struct{}, len(tasks))
	for _, t := range tasks {
		if !t.ID.IsZero() {
			taken[ID(strings.TrimSpace(string(t.ID)))] = struct{}{}
		}
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		cp := t.Clone()
		cp.Title = strings.TrimSpace(cp.Title)
		if cp.ID.IsZero() {
			cp.ID = nextFreeID(taken, i+1)
		} else {
			cp.ID = ID(strings.TrimSpace(string(cp.ID)))
		}
		cp.Dependencies = dedupe(cp.Dependencies)
		out[i] = cp
	}
	return out
}

// nextFreeID returns the first numeric id from n on that is not taken and
// marks it taken.
func nextFreeID(taken map[ID]struct{}, n int) ID {
	for {
		id := ID(strconv.Itoa(n))
		if _, ok := taken[id]; !ok {
			taken[id] = struct{}{}
			return id
		}
		n++
	}
}

func dedupe(ids []ID) []ID {
	out := make([]ID, 0, len(ids))
	seen := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		id = ID(strings.TrimSpace(string(id)))
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
