package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette for the board. The dark flag is injected
// explicitly at construction — there is no ambient global — so the
// board is testable with either palette.
type Theme struct {
	Dark bool

	Title        lipgloss.Style
	Header       lipgloss.Style
	Column       lipgloss.Style
	ColumnTitle  lipgloss.Style
	ColumnCount  lipgloss.Style
	Card         lipgloss.Style
	CardFocused  lipgloss.Style
	CardCarrying lipgloss.Style
	Help         lipgloss.Style
	NoticeOK     lipgloss.Style
	NoticeErr    lipgloss.Style
	Overlay      lipgloss.Style
	FormLabel    lipgloss.Style
}

// NewTheme builds the palette for dark or light terminals.
func NewTheme(dark bool) Theme {
	fg := lipgloss.Color("235")
	dim := lipgloss.Color("243")
	frame := lipgloss.Color("250")
	if dark {
		fg = lipgloss.Color("252")
		dim = lipgloss.Color("245")
		frame = lipgloss.Color("240")
	}

	return Theme{
		Dark:        dark,
		Title:       lipgloss.NewStyle().Bold(true).Foreground(fg),
		Header:      lipgloss.NewStyle().Foreground(dim),
		Column:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(frame).Padding(0, 1),
		ColumnTitle: lipgloss.NewStyle().Bold(true).Foreground(fg),
		ColumnCount: lipgloss.NewStyle().Foreground(dim),
		Card:        lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(dim).Padding(0, 1),
		CardFocused: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 1),
		CardCarrying: lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("213")).Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(dim),
		NoticeOK:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		NoticeErr: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Overlay:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("203")).Padding(1, 2),
		FormLabel: lipgloss.NewStyle().Foreground(dim),
	}
}
