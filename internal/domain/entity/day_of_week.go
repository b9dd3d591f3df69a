package entity

import (
	"fmt"
	"time"
)

// DayOfWeek indexes the weekly schedule, Monday=0 through Sunday=6.
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of entries in a complete weekly schedule.
const DaysPerWeek = 7

var dayNames = [DaysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return dayNames[d]
}

func (d DayOfWeek) Valid() bool {
	return d >= Monday && d <= Sunday
}

// AllDays returns Monday through Sunday in validation order.
func AllDays() []DayOfWeek {
	return []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// DayOfWeekFromTime maps time.Weekday (Sunday=0) onto the Monday-first index.
func DayOfWeekFromTime(t time.Time) DayOfWeek {
	return DayOfWeek((int(t.Weekday()) + 6) % 7)
}
