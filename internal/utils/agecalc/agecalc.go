// Package agecalc converts between ages and birth-date bounds. Discovery
// never stores an age integer; it filters on birth dates derived from the
// viewer's min/max age settings.
package agecalc

import "time"

// MaxBirthDateFor returns the latest birth date of someone at least minAge
// years old: anyone born on or before it qualifies.
func MaxBirthDateFor(minAge int, now time.Time) time.Time {
	return now.AddDate(-minAge, 0, 0)
}

// MinBirthDateFor returns the earliest birth date of someone at most maxAge
// years old: anyone born on or after it qualifies. A person whose
// (maxAge)th birthday falls after today's cutoff is still inside the range.
func MinBirthDateFor(maxAge int, now time.Time) time.Time {
	return now.AddDate(-maxAge, 0, 0).AddDate(0, 0, 1)
}

// Age returns full years elapsed between birth and now.
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
