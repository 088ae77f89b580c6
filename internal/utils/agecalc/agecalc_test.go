package agecalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBirthDateBounds(t *testing.T) {
	// viewer with minAge=25, maxAge=35 on 2024-06-01 accepts birth dates
	// between 1989-06-02 and 1999-06-01 inclusive
	now := date(2024, time.June, 1)

	assert.Equal(t, date(1999, time.June, 1), MaxBirthDateFor(25, now))
	assert.Equal(t, date(1989, time.June, 2), MinBirthDateFor(35, now))
}

func TestAge(t *testing.T) {
	now := date(2024, time.June, 1)

	assert.Equal(t, 25, Age(date(1999, time.June, 1), now))  // birthday today
	assert.Equal(t, 24, Age(date(1999, time.June, 2), now))  // birthday tomorrow
	assert.Equal(t, 34, Age(date(1989, time.June, 2), now))
}
