package view

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Rule is the style attached to one class. Unset fields leave the style
// produced by earlier classes alone.
type Rule struct {
	Foreground       string `yaml:"foreground,omitempty"`
	Background       string `yaml:"background,omitempty"`
	BorderForeground string `yaml:"border_foreground,omitempty"`
	Border           string `yaml:"border,omitempty"` // normal, rounded, thick, hidden, none
	BorderBottomOnly bool   `yaml:"border_bottom_only,omitempty"`
	Bold             *bool  `yaml:"bold,omitempty"`
	Italic           *bool  `yaml:"italic,omitempty"`
	Faint            *bool  `yaml:"faint,omitempty"`
	Reverse          *bool  `yaml:"reverse,omitempty"`
	Underline        *bool  `yaml:"underline,omitempty"`
	Padding          []int  `yaml:"padding,omitempty"` // CSS shorthand: 1, 2 or 4 values
	MarginBottom     *int   `yaml:"margin_bottom,omitempty"`
}

// Apply layers the rule on top of st.
func (r Rule) Apply(st lipgloss.Style) lipgloss.Style {
	if r.Foreground != "" {
		st = st.Foreground(lipgloss.Color(r.Foreground))
	}
	if r.Background != "" {
		st = st.Background(lipgloss.Color(r.Background))
	}
	if b, ok := borders[strings.ToLower(r.Border)]; ok {
		if r.BorderBottomOnly {
			st = st.BorderStyle(b).BorderBottom(true).BorderTop(false).BorderLeft(false).BorderRight(false)
		} else {
			st = st.Border(b)
		}
	} else if strings.EqualFold(r.Border, "none") {
		st = st.UnsetBorderStyle().BorderTop(false).BorderRight(false).BorderBottom(false).BorderLeft(false)
	}
	if r.BorderForeground != "" {
		st = st.BorderForeground(lipgloss.Color(r.BorderForeground))
	}
	if r.Bold != nil {
		st = st.Bold(*r.Bold)
	}
	if r.Italic != nil {
		st = st.Italic(*r.Italic)
	}
	if r.Faint != nil {
		st = st.Faint(*r.Faint)
	}
	if r.Reverse != nil {
		st = st.Reverse(*r.Reverse)
	}
	if r.Underline != nil {
		st = st.Underline(*r.Underline)
	}
	if len(r.Padding) > 0 {
		st = st.Padding(r.Padding...)
	}
	if r.MarginBottom != nil {
		st = st.MarginBottom(*r.MarginBottom)
	}
	return st
}

var borders = map[string]lipgloss.Border{
	"normal":  lipgloss.NormalBorder(),
	"rounded": lipgloss.RoundedBorder(),
	"thick":   lipgloss.ThickBorder(),
	"hidden":  lipgloss.HiddenBorder(),
}

// Stylesheet maps class names to rules.
type Stylesheet struct {
	rules map[string]Rule
}

// NewStylesheet creates an empty stylesheet.
func NewStylesheet() *Stylesheet {
	return &Stylesheet{rules: make(map[string]Rule)}
}

// Set replaces the rule for class.
func (s *Stylesheet) Set(class string, r Rule) {
	s.rules[class] = r
}

// Rule returns the rule for class.
func (s *Stylesheet) Rule(class string) (Rule, bool) {
	r, ok := s.rules[class]
	return r, ok
}

// Merge copies every rule of other into s, replacing existing ones.
func (s *Stylesheet) Merge(other map[string]Rule) {
	for class, r := range other {
		s.rules[class] = r
	}
}

// Style computes the style for a node: its classes' rules applied in order,
// so later classes win.
func (s *Stylesheet) Style(n *Node) lipgloss.Style {
	st := lipgloss.NewStyle()
	if s == nil || n == nil {
		return st
	}
	for _, class := range n.Class {
		if r, ok := s.rules[class]; ok {
			st = r.Apply(st)
		}
	}
	return st
}

// Bool returns a pointer to b, for building rules in code.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for building rules in code.
func Int(i int) *int { return &i }

var (
	unicodeSupported     bool
	unicodeSupportedOnce sync.Once
)

// SupportsUnicode reports whether the terminal locale is UTF-8.
func SupportsUnicode() bool {
	unicodeSupportedOnce.Do(func() {
		for _, envVar := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
			val := strings.ToLower(os.Getenv(envVar))
			if strings.Contains(val, "utf-8") || strings.Contains(val, "utf8") {
				unicodeSupported = true
				return
			}
		}
	})
	return unicodeSupported
}

// Icon names used by board components.
const (
	IconPencil      = "pencil"
	IconCross       = "cross"
	IconTrash       = "trash"
	IconSheetsInBox = "sheets-in-box"
)

// Icons maps icon names to glyphs.
type Icons map[string]string

// UnicodeIcons is the glyph set for UTF-8 terminals.
var UnicodeIcons = Icons{
	IconPencil:      "✎",
	IconCross:       "✕",
	IconTrash:       "⌫",
	IconSheetsInBox: "⊟",
}

// ASCIIIcons is the fallback glyph set.
var ASCIIIcons = Icons{
	IconPencil:      "e",
	IconCross:       "x",
	IconTrash:       "del",
	IconSheetsInBox: "arc",
}

// DefaultIcons picks the glyph set for the current terminal.
func DefaultIcons() Icons {
	if SupportsUnicode() {
		return UnicodeIcons
	}
	return ASCIIIcons
}
