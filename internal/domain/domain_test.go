package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourse_Tabs(t *testing.T) {
	tests := []struct {
		name   string
		course Course
		want   []string
	}{
		{"html only", Course{}, []string{"html"}},
		{"css", Course{ShowCSS: true}, []string{"html", "css"}},
		{"js", Course{ShowJS: true}, []string{"html", "js"}},
		{"all", Course{ShowCSS: true, ShowJS: true}, []string{"html", "css", "js"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.course.Tabs())
		})
	}
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range Difficulties {
		assert.True(t, ValidDifficulty(d), d)
	}
	assert.False(t, ValidDifficulty("beginner"))
	assert.False(t, ValidDifficulty(""))
}

func TestProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Profile{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "Ada", Profile{FirstName: "Ada"}.DisplayName())
	assert.Equal(t, "ada@example.com", Profile{Email: "ada@example.com"}.DisplayName())
}

func TestSession_IsAdmin(t *testing.T) {
	var none *Session
	assert.False(t, none.IsAdmin())
	assert.False(t, (&Session{}).IsAdmin())
	assert.True(t, (&Session{Profile: Profile{IsAdmin: true}}).IsAdmin())
}
