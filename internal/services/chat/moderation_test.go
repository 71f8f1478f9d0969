package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanModerate(t *testing.T) {
	cases := []struct {
		name   string
		actor  string
		target string
		want   bool
	}{
		{"tutor over student", "tutor", "student", true},
		{"tutor over mentor", "tutor", "mentor", true},
		{"mentor over project-mentor", "mentor", "project-mentor", true},
		{"mentor over student", "mentor", "student", true},
		{"project-mentor over student", "project-mentor", "student", true},
		{"student over student", "student", "student", false},
		{"equal tutors", "tutor", "tutor", false},
		{"student over mentor", "student", "mentor", false},
		{"mentor over tutor", "mentor", "tutor", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanModerate(tc.actor, tc.target))
		})
	}
}

// Unknown roles rank zero: every ranked role moderates them and they
// moderate nobody. Pinned so a rank-table change is a conscious one.
func TestCanModerate_UnknownRole(t *testing.T) {
	assert.True(t, CanModerate("student", "guest"))
	assert.False(t, CanModerate("guest", "student"))
	assert.False(t, CanModerate("guest", "visitor"))
}
