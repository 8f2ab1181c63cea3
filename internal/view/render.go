package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Renderer draws node trees with a stylesheet and an icon set.
type Renderer struct {
	Styles *Stylesheet
	Icons  Icons
}

// NewRenderer creates a renderer. A nil stylesheet renders unstyled.
func NewRenderer(styles *Stylesheet, icons Icons) *Renderer {
	if styles == nil {
		styles = NewStylesheet()
	}
	if icons == nil {
		icons = DefaultIcons()
	}
	return &Renderer{Styles: styles, Icons: icons}
}

// Render draws n into a block at most width cells wide. A width of zero or
// less lets the node take its natural width.
func (r *Renderer) Render(n *Node, width int) string {
	if n == nil {
		return ""
	}
	st := r.Styles.Style(n)
	inner := width
	if width > 0 {
		inner = max(width-st.GetHorizontalFrameSize(), 1)
	}

	var content string
	switch n.Kind {
	case KindBox:
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, r.Render(c, inner))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, parts...)
	case KindRow:
		content = r.renderRow(n, inner)
	case KindInput:
		content = n.Raw
		if content == "" {
			content = n.Text
		}
	case KindButton:
		content = r.buttonText(n)
		if n.Focused {
			st = st.Reverse(true)
		}
	default:
		content = n.Text
	}

	if width > 0 && (n.Kind == KindText || n.Kind == KindBox) {
		st = st.Width(max(width-st.GetHorizontalBorderSize()-st.GetHorizontalMargins(), 1))
	}
	return st.Render(content)
}

// renderRow gives every child after the first its natural width and the
// first child whatever is left.
func (r *Renderer) renderRow(n *Node, width int) string {
	if len(n.Children) == 0 {
		return ""
	}
	tail := make([]string, 0, len(n.Children)-1)
	used := 0
	for _, c := range n.Children[1:] {
		s := r.Render(c, 0)
		used += lipgloss.Width(s)
		tail = append(tail, s)
	}
	firstWidth := 0
	if width > 0 {
		firstWidth = max(width-used, 1)
	}
	parts := append([]string{r.Render(n.Children[0], firstWidth)}, tail...)
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (r *Renderer) buttonText(n *Node) string {
	var parts []string
	if g, ok := r.Icons[n.Icon]; ok && g != "" {
		parts = append(parts, g)
	}
	if n.Text != "" {
		parts = append(parts, n.Text)
	}
	if len(parts) == 0 {
		parts = append(parts, n.Label)
	}
	return strings.Join(parts, " ")
}
