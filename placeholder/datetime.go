/* Copyright 2023 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package placeholder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CurrencySymbol is appended by format:currency.
var CurrencySymbol = "₽"

// parseDatetime turns the usual suspects into a time.Time: Unix
// timestamps, ISO, PostgreSQL-style, and dd.mm.yyyy forms.  hasTime
// reports whether the input carried a time-of-day component.
func parseDatetime(v interface{}) (time.Time, bool, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false, false
	case time.Time:
		hasTime := x.Hour() != 0 || x.Minute() != 0 || x.Second() != 0
		return x, hasTime, true
	case int:
		return time.Unix(int64(x), 0).UTC(), true, true
	case int64:
		return time.Unix(x, 0).UTC(), true, true
	case float64:
		return time.Unix(int64(x), 0).UTC(), true, true
	}

	s := strings.TrimSpace(Stringify(v))
	if s == "" {
		return time.Time{}, false, false
	}

	if allDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return time.Unix(n, 0).UTC(), true, true
		}
	}

	if strings.Contains(s, "T") {
		if t, err := time.Parse(time.RFC3339Nano, strings.Replace(s, "Z", "+00:00", 1)); err == nil {
			return t, true, true
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true, true
		}
	}

	layouts := []struct {
		layout  string
		hasTime bool
	}{
		{"2006-01-02 15:04:05", true},
		{"2006-01-02 15:04", true},
		{"2006-01-02", false},
		{"02.01.2006 15:04:05", true},
		{"02.01.2006 15:04", true},
		{"02.01.2006", false},
		{"2006-01-02T15:04:05", true},
		{"2006-01-02T15:04", true},
	}
	for _, l := range layouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.hasTime, true
		}
	}

	return time.Time{}, false, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || '9' < s[i] {
			return false
		}
	}
	return true
}

// interval is a parsed PostgreSQL-style interval.
type interval struct {
	years, months, weeks, days int
	hours, minutes, seconds    int
}

func (iv interval) zero() bool {
	return iv.years == 0 && iv.months == 0 && iv.weeks == 0 && iv.days == 0 &&
		iv.hours == 0 && iv.minutes == 0 && iv.seconds == 0
}

var intervalPattern = regexp.MustCompile(
	`(?i)(\d+)\s+(years?|y|months?|mon|weeks?|w|days?|d|hours?|h|minutes?|min|m|seconds?|sec|s)\b`)

func parseInterval(s string) interval {
	var iv interval
	for _, m := range intervalPattern.FindAllStringSubmatch(s, -1) {
		n, _ := strconv.Atoi(m[1])
		switch strings.ToLower(m[2]) {
		case "year", "years", "y":
			iv.years += n
		case "month", "months", "mon":
			iv.months += n
		case "week", "weeks", "w":
			iv.weeks += n
		case "day", "days", "d":
			iv.days += n
		case "hour", "hours", "h":
			iv.hours += n
		case "minute", "minutes", "min", "m":
			iv.minutes += n
		case "second", "seconds", "sec", "s":
			iv.seconds += n
		}
	}
	return iv
}

// shiftMonths adds months with day-of-month clamping, so Jan 31 plus
// one month is Feb 28 (or 29), not Mar 3.  time.AddDate normalizes
// instead, which is the wrong behavior for calendar arithmetic.
func shiftMonths(t time.Time, months int) time.Time {
	y := t.Year()
	m := int(t.Month()) - 1 + months
	y += m / 12
	m = m % 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	day := t.Day()
	if last := daysIn(y, month); last < day {
		day = last
	}
	return time.Date(y, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// modShift moves a date by a signed interval: {date|shift:+1 month},
// {ts|shift:-2 hours 30 minutes}.  Month and year arithmetic is
// calendar-aware with day clamping.  Output is ISO-like, with the
// time component kept only when the input had one.
func modShift(v interface{}, arg *string) (interface{}, error) {
	if v == nil || arg == nil {
		return v, nil
	}
	spec := strings.TrimSpace(*arg)
	if spec == "" || (spec[0] != '+' && spec[0] != '-') {
		return v, fmt.Errorf("shift needs a leading sign: %q", spec)
	}
	sign := 1
	if spec[0] == '-' {
		sign = -1
	}
	iv := parseInterval(spec[1:])
	if iv.zero() {
		return v, fmt.Errorf("unparseable interval %q", spec)
	}

	t, hasTime, ok := parseDatetime(v)
	if !ok {
		return v, fmt.Errorf("unparseable date %v", v)
	}

	t = shiftMonths(t, sign*(iv.years*12+iv.months))
	t = t.Add(time.Duration(sign) * (time.Duration(iv.weeks*7+iv.days)*24*time.Hour +
		time.Duration(iv.hours)*time.Hour +
		time.Duration(iv.minutes)*time.Minute +
		time.Duration(iv.seconds)*time.Second))

	if hasTime {
		return t.Format("2006-01-02 15:04:05"), nil
	}
	return t.Format("2006-01-02"), nil
}

var durationPattern = regexp.MustCompile(`(\d+)\s*([wdhms])\b`)

// modSeconds parses compound duration strings ("2h 30m") into whole
// seconds.
func modSeconds(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(Stringify(v))
	if s == "" {
		return nil, nil
	}
	var total int64
	found := false
	for _, m := range durationPattern.FindAllStringSubmatch(s, -1) {
		found = true
		n, _ := strconv.ParseInt(m[1], 10, 64)
		switch m[2] {
		case "w":
			total += n * 604800
		case "d":
			total += n * 86400
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}
	if !found || total == 0 {
		return nil, nil
	}
	return total, nil
}

// periodModifier builds the to_date/to_hour/.../to_year family:
// truncate a date to the start of the named period and emit a
// canonical "YYYY-MM-DD HH:MM:SS" string.
func periodModifier(period string) Func {
	return func(v interface{}, arg *string) (interface{}, error) {
		if v == nil {
			return v, nil
		}
		t, _, ok := parseDatetime(v)
		if !ok {
			return v, fmt.Errorf("unparseable date %v", v)
		}
		switch period {
		case "date":
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		case "hour":
			t = t.Truncate(time.Hour)
		case "minute":
			t = t.Truncate(time.Minute)
		case "second":
			t = t.Truncate(time.Second)
		case "week":
			// Weeks start on Monday.
			back := (int(t.Weekday()) + 6) % 7
			t = t.AddDate(0, 0, -back)
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		case "month":
			t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		case "year":
			t = time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
		default:
			return v, errors.New("unknown period " + period)
		}
		return t.Format("2006-01-02 15:04:05"), nil
	}
}

// modFormat renders dates, times, and numbers:
// format:date|time|time_full|datetime|datetime_full|pg_date|pg_datetime|timestamp
// for temporal values and format:currency|percent|number for numeric
// ones.
func modFormat(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	if arg == nil {
		return Stringify(v), errors.New("missing format kind")
	}

	switch *arg {
	case "currency":
		f, ok := toFloat(v)
		if !ok {
			return Stringify(v), nil
		}
		return fmt.Sprintf("%.2f %s", f, CurrencySymbol), nil
	case "percent":
		f, ok := toFloat(v)
		if !ok {
			return Stringify(v), nil
		}
		return fmt.Sprintf("%.1f%%", f), nil
	case "number":
		f, ok := toFloat(v)
		if !ok {
			return Stringify(v), nil
		}
		return fmt.Sprintf("%.2f", f), nil
	}

	t, _, ok := parseDatetime(v)
	if !ok {
		return Stringify(v), nil
	}
	switch *arg {
	case "timestamp":
		return strconv.FormatInt(t.Unix(), 10), nil
	case "date":
		return t.Format("02.01.2006"), nil
	case "time":
		return t.Format("15:04"), nil
	case "time_full":
		return t.Format("15:04:05"), nil
	case "datetime":
		return t.Format("02.01.2006 15:04"), nil
	case "datetime_full":
		return t.Format("02.01.2006 15:04:05"), nil
	case "pg_date":
		return t.Format("2006-01-02"), nil
	case "pg_datetime":
		return t.Format("2006-01-02 15:04:05"), nil
	}
	return Stringify(v), fmt.Errorf("unknown format kind %q", *arg)
}
