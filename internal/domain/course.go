package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrCourseNotFound = errors.New("course not found")

const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func ValidDifficulty(d string) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

type Course struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	HTMLCode    string     `json:"html_code"`
	CSSCode     string     `json:"css_code"`
	JSCode      string     `json:"js_code"`
	ShowCSS     bool       `json:"show_css"`
	ShowJS      bool       `json:"show_js"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Tabs lists the editor tabs a learner sees. HTML is always present.
func (c Course) Tabs() []string {
	tabs := []string{"html"}
	if c.ShowCSS {
		tabs = append(tabs, "css")
	}
	if c.ShowJS {
		tabs = append(tabs, "js")
	}
	return tabs
}

// Code is the exercise code shipped with the course.
func (c Course) Code() CodeSnapshot {
	return CodeSnapshot{HTML: c.HTMLCode, CSS: c.CSSCode, JS: c.JSCode}
}
