package cache

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimetableViewKeyMatchesSemesterPattern(t *testing.T) {
	key := TimetableViewKey("sem-1", "class", "10A1", 5)
	assert.Equal(t, "timetable:sem-1:class:10A1:week:5", key)

	matched, err := path.Match(SemesterPattern("sem-1"), key)
	assert.NoError(t, err)
	assert.True(t, matched)

	matched, _ = path.Match(SemesterPattern("sem-2"), key)
	assert.False(t, matched)
}
