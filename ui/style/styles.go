package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/drake/tusk/ui/tui/canvas"
)

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	// Status indicators
	StatusAccount  lipgloss.Style
	StatusOffline  lipgloss.Style
	StatusLoading  lipgloss.Style
	StatusLive     lipgloss.Style
	StatusScrolled lipgloss.Style

	// Compose panel
	ComposeBorder lipgloss.Style
	ComposeTitle  lipgloss.Style

	Separator lipgloss.Style

	// Misc
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		StatusAccount: lipgloss.NewStyle().
			Foreground(lipgloss.Color("71")), // Muted green
		StatusOffline: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		StatusLoading: lipgloss.NewStyle().
			Foreground(lipgloss.Color("179")),
		StatusLive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		StatusScrolled: lipgloss.NewStyle().
			Foreground(lipgloss.Color("179")),

		ComposeBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		ComposeTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),

		Separator: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
	}
}

// DefaultPalette maps the attribute names used by canvas widgets to styles.
func DefaultPalette() canvas.Palette {
	return canvas.Palette{
		"button":          lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		"button_focused":  lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true),
		"editbox":         lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")),
		"editbox_focused": lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")),
		"account":         lipgloss.NewStyle().Foreground(lipgloss.Color("71")),
		"display_name":    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		"hashtag":         lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		"link":            lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true),
		"reblog":          lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		"status_time":     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		"sensitive":       lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"highlight":       lipgloss.NewStyle().Reverse(true),
		"muted":           lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		"error":           lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// ParseStyle builds a style from a spec such as "fg=212,bg=62,bold".
// Recognised flags are bold, italic, underline, reverse and faint.
func ParseStyle(spec string) (lipgloss.Style, error) {
	s := lipgloss.NewStyle()
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, val, hasVal := strings.Cut(field, "=")
		switch {
		case hasVal && key == "fg":
			s = s.Foreground(lipgloss.Color(val))
		case hasVal && key == "bg":
			s = s.Background(lipgloss.Color(val))
		case !hasVal && key == "bold":
			s = s.Bold(true)
		case !hasVal && key == "italic":
			s = s.Italic(true)
		case !hasVal && key == "underline":
			s = s.Underline(true)
		case !hasVal && key == "reverse":
			s = s.Reverse(true)
		case !hasVal && key == "faint":
			s = s.Faint(true)
		default:
			return lipgloss.Style{}, fmt.Errorf("style: unknown field %q", field)
		}
	}
	return s, nil
}
