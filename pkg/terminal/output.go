// Package terminal provides styled output for the tutoring chat:
// markdown rendering for tutor replies, framed user messages, and the
// checkpoint progress panel. No TUI framework - just print and scroll.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"mergetutor/pkg/checkpoint"
)

const defaultWrapWidth = 100

// Writer provides styled terminal output with markdown rendering.
type Writer struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	width    int
	mu       sync.Mutex

	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
	userStyle    lipgloss.Style
}

// New creates a Writer for stdout, sized to the attached terminal.
func New() *Writer {
	width := defaultWrapWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
		width = w
	}
	return NewWithOutput(os.Stdout, width)
}

// NewWithOutput creates a Writer with a custom destination and wrap width.
func NewWithOutput(out io.Writer, width int) *Writer {
	if width <= 0 {
		width = defaultWrapWidth
	}
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)

	// lipgloss adapts to the detected profile for AdaptiveColor.
	_ = termenv.ColorProfile()

	return &Writer{
		out:      out,
		renderer: renderer,
		width:    width,
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#007D00", Dark: "#50FA7B"}),
		dimStyle: lipgloss.NewStyle().Faint(true),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#3B3B8F", Dark: "#BD93F9"}),
		userStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#704200", Dark: "#F1FA8C"}),
	}
}

// Width returns the wrap width in columns.
func (w *Writer) Width() int {
	return w.width
}

// AssistantMessage renders tutor markdown. It returns the rendered text
// so the caller can measure its height for scroll bookkeeping.
func (w *Writer) AssistantMessage(markdown string) string {
	rendered := markdown
	if w.renderer != nil {
		if out, err := w.renderer.Render(markdown); err == nil {
			rendered = out
		}
	}
	w.print(rendered)
	return rendered
}

// UserMessage prints a learner message with its prompt marker.
func (w *Writer) UserMessage(text string) string {
	rendered := w.userStyle.Render("> "+strings.TrimSpace(text)) + "\n"
	w.print(rendered)
	return rendered
}

// Error prints a styled error line.
func (w *Writer) Error(msg string) {
	w.print(w.errorStyle.Render("Error: "+msg) + "\n")
}

// Success prints a styled confirmation line.
func (w *Writer) Success(msg string) {
	w.print(w.successStyle.Render(msg) + "\n")
}

// Dim prints de-emphasized helper text.
func (w *Writer) Dim(msg string) {
	w.print(w.dimStyle.Render(msg) + "\n")
}

// Header prints the lesson title banner.
func (w *Writer) Header(title string) {
	w.print(w.headerStyle.Render(title) + "\n\n")
}

// CheckpointPanel renders checkpoint progress. Descriptions stay hidden
// until a checkpoint is completed.
func (w *Writer) CheckpointPanel(checkpoints []checkpoint.Checkpoint) {
	var b strings.Builder
	b.WriteString(w.headerStyle.Render("Checkpoint Progress"))
	b.WriteString("\n")
	for i, cp := range checkpoints {
		var line string
		switch cp.Status {
		case checkpoint.StatusCompleted:
			line = w.successStyle.Render(fmt.Sprintf("%d. %s ✔", i+1, cp.Description))
		case checkpoint.StatusInProgress:
			line = fmt.Sprintf("%d.   ? ? ?  (In Progress...)", i+1)
		default:
			line = w.dimStyle.Render(fmt.Sprintf("%d.   ? ? ?", i+1))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	w.print(b.String())
}

// MeasureHeight counts the terminal rows a rendered block occupies.
func MeasureHeight(rendered string) float64 {
	if rendered == "" {
		return 0
	}
	n := strings.Count(rendered, "\n")
	if !strings.HasSuffix(rendered, "\n") {
		n++
	}
	return float64(n)
}

func (w *Writer) print(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprint(w.out, s)
}
