package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Notifier печатает тосты в терминал.
type Notifier struct {
	mu           sync.Mutex
	out          io.Writer
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	bodyStyle    lipgloss.Style
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{
		out:          out,
		successStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		errorStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		bodyStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (n *Notifier) Success(title, message string) {
	n.print(n.successStyle.Render("✓ "+title), message)
}

func (n *Notifier) Error(title, message string) {
	n.print(n.errorStyle.Render("✗ "+title), message)
}

func (n *Notifier) print(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if message == "" {
		fmt.Fprintln(n.out, title)
		return
	}
	fmt.Fprintf(n.out, "%s %s\n", title, n.bodyStyle.Render(message))
}
