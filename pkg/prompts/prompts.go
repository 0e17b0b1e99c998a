// Package prompts holds the embedded tutor instructions and lesson text.
package prompts

import (
	_ "embed"
	"strings"
)

//go:embed mergesort-instructions.md
var instructions string

//go:embed mergesort-lesson.md
var lesson string

const lessonPlaceholder = "{{LESSON_CONTENT}}"

// SystemMessage returns the full system prompt sent with every
// completion request: the tutoring instructions with the lesson
// content substituted in.
func SystemMessage() string {
	return strings.Replace(instructions, lessonPlaceholder, lesson, 1)
}

// Lesson returns the raw lesson text.
func Lesson() string {
	return lesson
}
