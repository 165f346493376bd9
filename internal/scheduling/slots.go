package scheduling

// GenerateSlots enumerates candidate slot times from start to end inclusive,
// stepping by intervalMinutes. If start is after end the result is empty.
// An interval that does not divide the range evenly simply stops at the last
// time that does not pass end.
func GenerateSlots(start, end TimeOfDay, intervalMinutes int) []TimeOfDay {
	if intervalMinutes <= 0 || start > end {
		return nil
	}

	var times []TimeOfDay
	for t := start; t <= end; t += TimeOfDay(intervalMinutes) {
		times = append(times, t)
	}
	return times
}

// daysOfMonthFrom lists every calendar day from start to the last day of
// start's month inclusive.
func daysOfMonthFrom(start Date) []Date {
	last := start.LastOfMonth()

	var days []Date
	for d := start; !d.After(last); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
