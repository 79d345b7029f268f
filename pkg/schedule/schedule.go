package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule determines when a periodic job should run next.
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(from time.Time) time.Time {
	return from.Add(s.every)
}

func (s intervalSchedule) String() string {
	return fmt.Sprintf("every %v", s.every)
}

type hourlySchedule struct {
	minute int
}

func (s hourlySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	return next
}

func (s hourlySchedule) String() string {
	return fmt.Sprintf("hourly at :%02d", s.minute)
}

type dailySchedule struct {
	hour   int
	minute int
}

func (s dailySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}

type weeklySchedule struct {
	weekday time.Weekday
	hour    int
	minute  int
}

func (s weeklySchedule) Next(from time.Time) time.Time {
	daysUntil := (int(s.weekday) - int(from.Weekday()) + 7) % 7
	next := from.AddDate(0, 0, daysUntil)
	next = time.Date(next.Year(), next.Month(), next.Day(), s.hour, s.minute, 0, 0, next.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (s weeklySchedule) String() string {
	return fmt.Sprintf("weekly on %s at %02d:%02d", s.weekday, s.hour, s.minute)
}

// Every runs at a fixed interval measured from the previous run.
func Every(d time.Duration) Schedule {
	return intervalSchedule{every: d}
}

// HourlyAt runs every hour at the given minute.
func HourlyAt(minute int) Schedule {
	return hourlySchedule{minute: minute}
}

// DailyAt runs every day at hour:minute in the local time zone.
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour, minute: minute}
}

// WeeklyOn runs once a week on weekday at hour:minute.
func WeeklyOn(weekday time.Weekday, hour, minute int) Schedule {
	return weeklySchedule{weekday: weekday, hour: hour, minute: minute}
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// Parse reads a schedule expression:
//
//	every 6h
//	hourly :15
//	daily 03:00
//	weekly sun 03:00
func Parse(expr string) (Schedule, error) {
	fields := strings.Fields(strings.ToLower(expr))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidSchedule)
	}

	switch fields[0] {
	case "every":
		if len(fields) != 2 {
			break
		}
		d, err := time.ParseDuration(fields[1])
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: bad interval %q", ErrInvalidSchedule, fields[1])
		}
		return Every(d), nil
	case "hourly":
		if len(fields) != 2 {
			break
		}
		m, err := strconv.Atoi(strings.TrimPrefix(fields[1], ":"))
		if err != nil || m < 0 || m > 59 {
			return nil, fmt.Errorf("%w: bad minute %q", ErrInvalidSchedule, fields[1])
		}
		return HourlyAt(m), nil
	case "daily":
		if len(fields) != 2 {
			break
		}
		h, m, err := parseClock(fields[1])
		if err != nil {
			return nil, err
		}
		return DailyAt(h, m), nil
	case "weekly":
		if len(fields) != 3 {
			break
		}
		wd, ok := weekdays[fields[1][:min(3, len(fields[1]))]]
		if !ok {
			return nil, fmt.Errorf("%w: bad weekday %q", ErrInvalidSchedule, fields[1])
		}
		h, m, err := parseClock(fields[2])
		if err != nil {
			return nil, err
		}
		return WeeklyOn(wd, h, m), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
}

func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad time %q", ErrInvalidSchedule, s)
	}
	return t.Hour(), t.Minute(), nil
}
