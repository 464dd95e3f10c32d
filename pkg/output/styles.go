package output

import (
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

// Color definitions using AdaptiveColor for automatic light/dark mode switching
var (
	SuccessColor = lipgloss.AdaptiveColor{
		Light: "#28A745", // Green
		Dark:  "#4CDD76",
	}

	ErrorColor = lipgloss.AdaptiveColor{
		Light: "#DC3545", // Red
		Dark:  "#FF6B7D",
	}

	WarningColor = lipgloss.AdaptiveColor{
		Light: "#B8860B", // Amber
		Dark:  "#FFD54F",
	}

	InfoColor = lipgloss.AdaptiveColor{
		Light: "#17A2B8", // Cyan
		Dark:  "#4DD0E1",
	}

	MutedColor = lipgloss.AdaptiveColor{
		Light: "#6C757D", // Medium gray
		Dark:  "#ADB5BD",
	}

	PathColor = lipgloss.AdaptiveColor{
		Light: "#6C757D",
		Dark:  "#A0A8B0",
	}
)

// styles are bound to one lipgloss renderer so color detection follows the
// writer, not stdout.
type styles struct {
	status  map[types.Status]lipgloss.Style
	path    lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	hunk    lipgloss.Style
	bold    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		status: map[types.Status]lipgloss.Style{
			types.StatusWritten:   r.NewStyle().Foreground(SuccessColor).Bold(true),
			types.StatusUnchanged: r.NewStyle().Foreground(MutedColor),
			types.StatusPlanned:   r.NewStyle().Foreground(WarningColor).Bold(true),
			types.StatusFailed:    r.NewStyle().Foreground(ErrorColor).Bold(true),
		},
		path:    r.NewStyle().Foreground(PathColor).Italic(true),
		muted:   r.NewStyle().Foreground(MutedColor),
		err:     r.NewStyle().Foreground(ErrorColor),
		added:   r.NewStyle().Foreground(SuccessColor),
		removed: r.NewStyle().Foreground(ErrorColor),
		hunk:    r.NewStyle().Foreground(InfoColor),
		bold:    r.NewStyle().Bold(true),
	}
}

// indicators per status
var indicators = map[types.Status]string{
	types.StatusWritten:   "✓",
	types.StatusUnchanged: "=",
	types.StatusPlanned:   "○",
	types.StatusFailed:    "✗",
}
