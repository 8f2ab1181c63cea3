package board

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	frontmatter    = "---\n\nkanban-plugin: basic\n\n---\n"
	archiveHeading = "Archive"
	archiveRule    = "***"
	// bodyIndent prefixes every line of an item's body under its task line.
	bodyIndent = "    "
	lineBreak  = "<br>"
)

// Markdown renders the board as a kanban markdown file: one "## " heading per
// lane, a "- [ ]" task line per item, and the archive after a "***" rule.
func (b Board) Markdown() string {
	var sb strings.Builder
	sb.WriteString(frontmatter)
	for _, lane := range b.Lanes {
		sb.WriteString("\n## ")
		sb.WriteString(lane.Title)
		sb.WriteString("\n\n")
		for _, item := range lane.Items {
			writeTaskLine(&sb, item, false)
		}
	}
	if len(b.Archive) > 0 {
		sb.WriteString("\n" + archiveRule + "\n\n## " + archiveHeading + "\n\n")
		for _, a := range b.Archive {
			writeTaskLine(&sb, a.Item, true)
		}
	}
	return sb.String()
}

func writeTaskLine(sb *strings.Builder, item Item, done bool) {
	box := "[ ]"
	if done {
		box = "[x]"
	}
	fmt.Fprintf(sb, "- %s %s", box, escapeText(item.Title, false))
	for _, tag := range item.Tags {
		if tag != "" {
			sb.WriteString(" #" + escapeText(tag, true))
		}
	}
	sb.WriteString("\n")
	if item.Body == "" {
		return
	}
	for _, line := range strings.Split(item.Body, "\n") {
		sb.WriteString(bodyIndent + line + "\n")
	}
}

// escapeText makes s safe on a task line. Newlines become <br>. Backslashes,
// '#' and a literal "<br>" are escaped so the text reads back unchanged, and
// inside a tag so are spaces.
func escapeText(s string, tag bool) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			sb.WriteString(lineBreak)
		case c == '\\' || c == '#' || (tag && c == ' '):
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '<' && strings.HasPrefix(s[i:], lineBreak):
			sb.WriteString(`\<`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// ParseMarkdown reads a board written by Markdown. Unknown lines are ignored.
func ParseMarkdown(r io.Reader, now time.Time) (Board, error) {
	var (
		b         Board
		inFront   bool
		sawFront  bool
		inArchive bool
		afterRule bool
		// current is the last item read; indented lines below it are its body.
		current *Item
		body    []string
	)
	endItem := func() {
		if current != nil && body != nil {
			current.Body = strings.Join(body, "\n")
		}
		current, body = nil, nil
	}

	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if current != nil && strings.HasPrefix(line, bodyIndent) {
			body = append(body, strings.TrimPrefix(line, bodyIndent))
			continue
		}
		endItem()

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "---" && (lineNo == 1 || inFront) && !sawFront:
			inFront = !inFront
			sawFront = !inFront
		case inFront:
		case trimmed == archiveRule:
			afterRule = true
		case strings.HasPrefix(line, "## "):
			title := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			if afterRule && title == archiveHeading {
				inArchive = true
				continue
			}
			b.Lanes = append(b.Lanes, NewLane(title))
			inArchive = false
		case strings.HasPrefix(line, "- ["):
			item, ok := parseTaskLine(line, now)
			if !ok {
				continue
			}
			if inArchive {
				b.Archive = append(b.Archive, ArchivedItem{Item: item, ArchivedAt: now})
				current = &b.Archive[len(b.Archive)-1].Item
				continue
			}
			if len(b.Lanes) == 0 {
				return Board{}, fmt.Errorf("line %d: item before first lane heading", lineNo)
			}
			lane := &b.Lanes[len(b.Lanes)-1]
			lane.Items = append(lane.Items, item)
			current = &lane.Items[len(lane.Items)-1]
		}
	}
	endItem()
	if err := sc.Err(); err != nil {
		return Board{}, fmt.Errorf("read markdown: %w", err)
	}
	return b, nil
}

// parseTaskLine reads "- [ ] title #tag". Items with an empty title are kept.
func parseTaskLine(line string, now time.Time) (Item, bool) {
	if len(line) < 5 || line[4] != ']' {
		return Item{}, false
	}
	title, tags := splitTaskText(strings.TrimPrefix(line[5:], " "))
	item := NewItem("", now)
	item.Title = title
	item.Tags = tags
	return item, true
}

// splitTaskText undoes escapeText. The first unescaped '#' starts the tags;
// the single space written before it is not part of the title.
func splitTaskText(s string) (string, []string) {
	var (
		cur    strings.Builder
		title  string
		tags   []string
		inTags bool
	)
	endTag := func() {
		if cur.Len() > 0 {
			tags = append(tags, cur.String())
		}
		cur.Reset()
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == '#':
			if inTags {
				endTag()
				continue
			}
			title = strings.TrimSuffix(cur.String(), " ")
			cur.Reset()
			inTags = true
		case inTags && c == ' ':
			endTag()
		case strings.HasPrefix(s[i:], lineBreak):
			cur.WriteByte('\n')
			i += len(lineBreak) - 1
		default:
			cur.WriteByte(c)
		}
	}
	if inTags {
		endTag()
	} else {
		title = cur.String()
	}
	return title, tags
}
