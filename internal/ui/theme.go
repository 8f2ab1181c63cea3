// Package ui provides the terminal user interface.
package ui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/bborn/lanes/internal/card"
	"github.com/bborn/lanes/internal/view"
)

// Theme defines all colors used in the UI.
type Theme struct {
	Name string

	// Core colors
	Primary   string // Selections, highlights
	Secondary string // Help keys, counts
	Muted     string // Dimmed text, borders

	// Semantic colors
	Success string
	Warning string
	Error   string

	// Card colors
	CardBg         string
	CardFg         string
	CardBorder     string
	CardBorderHi   string
	ColumnBorder   string
	ColumnBorderHi string
}

// BuiltinThemes contains all built-in themes.
var BuiltinThemes = map[string]Theme{
	"onedark":    OneDarkTheme,
	"default":    DefaultTheme,
	"nord":       NordTheme,
	"gruvbox":    GruvboxTheme,
	"catppuccin": CatppuccinTheme,
}

// OneDarkTheme is inspired by Atom's One Dark.
var OneDarkTheme = Theme{
	Name:           "onedark",
	Primary:        "#61AFEF", // Soft blue
	Secondary:      "#56B6C2", // Cyan
	Muted:          "#5C6370", // Comment gray
	Success:        "#98C379",
	Warning:        "#E5C07B",
	Error:          "#E06C75",
	CardBg:         "#3E4451",
	CardFg:         "#ABB2BF",
	CardBorder:     "#3E4451",
	CardBorderHi:   "#61AFEF",
	ColumnBorder:   "#3E4451",
	ColumnBorderHi: "#61AFEF",
}

// DefaultTheme is purple on gray.
var DefaultTheme = Theme{
	Name:           "default",
	Primary:        "#7C3AED", // Purple
	Secondary:      "#06B6D4", // Cyan
	Muted:          "#6B7280", // Gray
	Success:        "#10B981",
	Warning:        "#F59E0B",
	Error:          "#EF4444",
	CardBg:         "#333333",
	CardFg:         "#FFFFFF",
	CardBorder:     "#6B7280",
	CardBorderHi:   "#7C3AED",
	ColumnBorder:   "#6B7280",
	ColumnBorderHi: "#7C3AED",
}

// NordTheme uses the Nord palette.
var NordTheme = Theme{
	Name:           "nord",
	Primary:        "#88C0D0", // Nord8
	Secondary:      "#81A1C1", // Nord9
	Muted:          "#4C566A", // Nord3
	Success:        "#A3BE8C",
	Warning:        "#EBCB8B",
	Error:          "#BF616A",
	CardBg:         "#3B4252",
	CardFg:         "#ECEFF4",
	CardBorder:     "#4C566A",
	CardBorderHi:   "#88C0D0",
	ColumnBorder:   "#4C566A",
	ColumnBorderHi: "#88C0D0",
}

// GruvboxTheme uses retro, earthy tones.
var GruvboxTheme = Theme{
	Name:           "gruvbox",
	Primary:        "#83A598", // Aqua
	Secondary:      "#B8BB26", // Green
	Muted:          "#665C54",
	Success:        "#B8BB26",
	Warning:        "#FABD2F",
	Error:          "#FB4934",
	CardBg:         "#3C3836",
	CardFg:         "#EBDBB2",
	CardBorder:     "#504945",
	CardBorderHi:   "#83A598",
	ColumnBorder:   "#504945",
	ColumnBorderHi: "#83A598",
}

// CatppuccinTheme is Catppuccin Mocha.
var CatppuccinTheme = Theme{
	Name:           "catppuccin",
	Primary:        "#CBA6F7", // Mauve
	Secondary:      "#89DCEB", // Sky
	Muted:          "#6C7086",
	Success:        "#A6E3A1",
	Warning:        "#F9E2AF",
	Error:          "#F38BA8",
	CardBg:         "#313244",
	CardFg:         "#CDD6F4",
	CardBorder:     "#45475A",
	CardBorderHi:   "#CBA6F7",
	ColumnBorder:   "#45475A",
	ColumnBorderHi: "#CBA6F7",
}

// LookupTheme returns the built-in theme called name.
func LookupTheme(name string) (Theme, error) {
	theme, ok := BuiltinThemes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme: %s", name)
	}
	return theme, nil
}

// ListThemes returns the names of all built-in themes, sorted.
func ListThemes() []string {
	names := make([]string, 0, len(BuiltinThemes))
	for name := range BuiltinThemes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// nextTheme returns the theme after name in ListThemes order.
func nextTheme(name string) Theme {
	names := ListThemes()
	i := slices.Index(names, name)
	return BuiltinThemes[names[(i+1)%len(names)]]
}

// Styles are the lipgloss styles of the board chrome. Cards are drawn with
// the stylesheet from DefaultStylesheet instead.
type Styles struct {
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Column    lipgloss.Style
	ColumnHi  lipgloss.Style
	Header    lipgloss.Style
	HeaderHi  lipgloss.Style
	Count     lipgloss.Style
	Modal     lipgloss.Style
	Selected  lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles builds the chrome styles for a theme.
func NewStyles(t Theme) Styles {
	primary := lipgloss.Color(t.Primary)
	muted := lipgloss.Color(t.Muted)
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(primary),
		Dim:     lipgloss.NewStyle().Foreground(muted),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Column: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.ColumnBorder)).
			Padding(0, 1),
		ColumnHi: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.ColumnBorderHi)).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.CardFg)),
		HeaderHi: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.CardFg)).
			Background(primary),
		Count: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),
		Selected: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		HelpKey:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Bold(true),
		HelpDesc:  lipgloss.NewStyle().Foreground(muted),
		StatusBar: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
	}
}

// DefaultStylesheet maps the card classes to rules for a theme.
func DefaultStylesheet(t Theme) *view.Stylesheet {
	s := view.NewStylesheet()
	s.Set(card.ClassItem, view.Rule{
		Border:           "rounded",
		BorderForeground: t.CardBorder,
		Padding:          []int{0, 1},
	})
	s.Set(card.ClassIsSelected, view.Rule{
		BorderForeground: t.CardBorderHi,
		Background:       t.CardBg,
	})
	s.Set(card.ClassIsDragging, view.Rule{
		Border:           "thick",
		BorderForeground: t.Warning,
	})
	s.Set(card.ClassTitle, view.Rule{Foreground: t.CardFg})
	s.Set(card.ClassInput, view.Rule{Foreground: t.CardFg})
	s.Set(card.ClassEditButton, view.Rule{Foreground: t.Muted, Padding: []int{0, 1}})
	s.Set(card.ClassIsEnabled, view.Rule{Foreground: t.Primary, Bold: view.Bool(true)})
	s.Set(card.ClassEditArchiveButton, view.Rule{Foreground: t.Muted, Padding: []int{0, 1}})
	s.Set(card.ClassButtonDelete, view.Rule{Foreground: t.Error, Padding: []int{0, 1}})
	s.Set(card.ClassButtonArchive, view.Rule{Foreground: t.Warning, Padding: []int{0, 1}})
	return s
}
