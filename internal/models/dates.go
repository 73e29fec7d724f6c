package models

import "time"

// DateOf returns midnight UTC of t's calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MembershipEnd is start plus the plan duration, in whole calendar days.
func MembershipEnd(start time.Time, durationDays int) time.Time {
	return DateOf(start).AddDate(0, 0, durationDays)
}
