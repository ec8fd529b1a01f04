package expiry

import (
	"fmt"
	"time"
)

// Layout is the editable date-time form of an absolute expiration.
const Layout = "2006-01-02 15:04:05"

// Never is the editable form of the "no expiration" sentinel. It matches the
// wire value (-1) so a hydrated draft and a fresh one agree.
const Never = "-1"

// Preset is a relative expiration window offered as a one-click choice.
type Preset struct {
	Months  int
	Days    int
	Hours   int
	Minutes int
}

// The presets exposed by the form. A month is fixed at 30 days.
var (
	PresetNever    = Preset{}
	PresetOneMonth = Preset{Months: 1}
	PresetOneDay   = Preset{Days: 1}
	PresetOneHour  = Preset{Hours: 1}
)

// Seconds returns the preset's total length in seconds.
func (p Preset) Seconds() int64 {
	return int64(p.Months)*30*24*3600 +
		int64(p.Days)*24*3600 +
		int64(p.Hours)*3600 +
		int64(p.Minutes)*60
}

// At converts the preset into an editable expiration value relative to now.
// A zero-length preset yields Never, not "expires now".
func (p Preset) At(now time.Time) string {
	seconds := p.Seconds()
	if seconds == 0 {
		return Never
	}
	return Format(now.Unix() + seconds)
}

// Format renders an epoch second in the editable layout, in local time.
func Format(ts int64) string {
	return time.Unix(ts, 0).Format(Layout)
}

// Parse converts an editable date-time string back to a point in time.
// An unparseable string is an error for the caller to surface, never a
// silent coercion.
func Parse(value string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiration time %q: %w", value, err)
	}
	return t, nil
}

// DurationSeconds combines a day/hour pair into a duration in seconds.
func DurationSeconds(days, hours int) int64 {
	return (int64(days)*24 + int64(hours)) * 3600
}

// SplitDuration breaks a stored duration back into the day/hour pair the
// form edits. Inverse of DurationSeconds for non-negative inputs.
func SplitDuration(seconds int64) (days, hours int) {
	if seconds <= 0 {
		return 0, 0
	}
	days = int(seconds / 86400)
	hours = int((seconds % 86400) / 3600)
	return days, hours
}

// Remaining reports the floored days and hours until the expiration value,
// clamped to zero. ok is false when the value is the sentinel or unparseable;
// the computation is display-only and has no side effects.
func Remaining(now time.Time, value string) (days, hours int, ok bool) {
	if value == "" || value == Never {
		return 0, 0, false
	}
	t, err := Parse(value)
	if err != nil {
		return 0, 0, false
	}
	secs := int64(t.Sub(now) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return int(secs / 86400), int((secs % 86400) / 3600), true
}
