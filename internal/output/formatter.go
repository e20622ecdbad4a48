package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
)

// Formatter is the interface for output formatting
type Formatter interface {
	Print(data any) error
	PrintError(err error)
	PrintHint(msg string)
}

// Field is one labelled value of a Section
type Field struct {
	Label string
	Value string
}

// Section is data with a human-readable layout. Plain and rich formatters
// render Title and Fields; the JSON formatter encodes the value itself.
type Section interface {
	Title() string
	Fields() []Field
}

// New creates a formatter for the specified mode
func New(mode string, stdout, stderr io.Writer) Formatter {
	switch mode {
	case "json":
		return &jsonFormatter{stdout: stdout, stderr: stderr}
	case "rich":
		return &richFormatter{
			plainFormatter: plainFormatter{stdout: stdout, stderr: stderr},
			profile:        termenv.ColorProfile(),
		}
	default:
		return &plainFormatter{stdout: stdout, stderr: stderr}
	}
}

// jsonFormatter outputs JSON to stdout
type jsonFormatter struct {
	stdout io.Writer
	stderr io.Writer
}

func (f *jsonFormatter) Print(data any) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) PrintError(err error) {
	errObj := map[string]string{"error": err.Error()}
	enc := json.NewEncoder(f.stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(errObj)
}

func (f *jsonFormatter) PrintHint(msg string) {
	// Hints are for humans, keep stderr machine-readable
}

// plainFormatter outputs indented "Label: value" lines
type plainFormatter struct {
	stdout io.Writer
	stderr io.Writer
}

func (f *plainFormatter) Print(data any) error {
	section, ok := data.(Section)
	if !ok {
		_, err := fmt.Fprintf(f.stdout, "%v\n", data)
		return err
	}

	if _, err := fmt.Fprintf(f.stdout, "%s:\n", section.Title()); err != nil {
		return err
	}
	for _, field := range section.Fields() {
		if _, err := fmt.Fprintf(f.stdout, "  %s: %s\n", field.Label, field.Value); err != nil {
			return err
		}
	}
	return nil
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(f.stderr, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.stderr, "hint: %v\n", msg)
}

// richFormatter outputs styled content for terminal
type richFormatter struct {
	plainFormatter
	profile termenv.Profile
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("8"))
)

func (f *richFormatter) Print(data any) error {
	section, ok := data.(Section)
	if !ok || f.profile == termenv.Ascii {
		return f.plainFormatter.Print(data)
	}

	fmt.Fprintln(f.stdout, titleStyle.Render(section.Title()))

	columns := []Column{
		{Name: "Setting", Key: "label"},
		{Name: "Value", Key: "value"},
	}
	rows := make([]map[string]string, 0, len(section.Fields()))
	for _, field := range section.Fields() {
		rows = append(rows, map[string]string{"label": field.Label, "value": field.Value})
	}

	RenderTable(f.stdout, columns, rows, labelStyle.Render)
	return nil
}

func (f *richFormatter) PrintError(err error) {
	if f.profile == termenv.Ascii {
		f.plainFormatter.PrintError(err)
		return
	}
	fmt.Fprintln(f.stderr, errorStyle.Render("error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	if f.profile == termenv.Ascii {
		f.plainFormatter.PrintHint(msg)
		return
	}
	fmt.Fprintln(f.stderr, hintStyle.Render("hint: "+msg))
}
