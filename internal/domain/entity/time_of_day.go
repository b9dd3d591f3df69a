package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a wall-clock time with minute precision, stored as minutes
// since midnight in [0, 1440).
type TimeOfDay int

const minutesPerDay = 24 * 60

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS". Seconds must be zero; a
// zero fractional part as produced by PostgreSQL time columns is tolerated.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	hour, err := parseTwoDigits(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	minute, err := parseTwoDigits(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	if len(parts) == 3 {
		sec := parts[2]
		if i := strings.IndexByte(sec, '.'); i >= 0 {
			if strings.Trim(sec[i+1:], "0") != "" {
				return 0, fmt.Errorf("%w: %q has sub-minute precision", ErrInvalidTimeOfDay, s)
			}
			sec = sec[:i]
		}
		seconds, err := parseTwoDigits(sec)
		if err != nil || seconds != 0 {
			return 0, fmt.Errorf("%w: %q has sub-minute precision", ErrInvalidTimeOfDay, s)
		}
	}

	return NewTimeOfDay(hour, minute)
}

func parseTwoDigits(s string) (int, error) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, ErrInvalidTimeOfDay
	}
	return strconv.Atoi(s)
}

// MustParseTimeOfDay panics on malformed input. Intended for constants and tests.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String formats as HH:MM for display.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Clock formats as HH:MM:SS, the form used on the wire.
func (t TimeOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute())
}

// AddMinutes reports the shifted time and whether it is still inside the day.
// 24:00 exactly counts as inside so a window may end at midnight.
func (t TimeOfDay) AddMinutes(m int) (TimeOfDay, bool) {
	n := int(t) + m
	return TimeOfDay(n), n >= 0 && n <= minutesPerDay
}

// On places the time on the calendar date of d in loc.
func (t TimeOfDay) On(d time.Time, loc *time.Location) time.Time {
	y, mo, day := d.Date()
	return time.Date(y, mo, day, t.Hour(), t.Minute(), 0, 0, loc)
}

// TimeOfDayFrom extracts the wall-clock minute from t.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.Clock(), nil
}

func (t *TimeOfDay) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return errors.New("cannot scan NULL into TimeOfDay; use *TimeOfDay")
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case time.Time:
		*t = TimeOfDayFrom(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", value)
	}
	return nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Clock())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, string(data))
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseDate reads a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateOf truncates t to its calendar date in t's own location, returned as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TimePtr is a convenience for optional session bounds.
func TimePtr(t TimeOfDay) *TimeOfDay {
	return &t
}
