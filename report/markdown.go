// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// wrapBreakpoints are the characters ansi.Wrap may break a line at.
const wrapBreakpoints = " ,.;-+|"

// parser is initialized once and shared. The configuration never
// changes and goldmark parsers are safe for concurrent Parse calls.
var (
	parser     goldmark.Markdown
	parserOnce sync.Once
)

func markdownParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return parser
}

// RenderMarkdown renders agent-authored markdown as styled terminal
// text. Soft line breaks inside paragraphs become spaces so the
// backend's hard-wrapped prose reflows to the terminal width; fenced
// code is syntax-highlighted with chroma; tables, lists, and
// blockquotes keep their structure. The profile controls styling:
// termenv.Ascii yields plain text with no escape sequences.
func RenderMarkdown(input string, theme Theme, width int, profile termenv.Profile) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	document := markdownParser().Parser().Parse(text.NewReader(source))

	// The profile is forced onto the styler rather than letting
	// lipgloss re-detect from the environment, so the caller's color
	// mode wins regardless of what stderr happens to be.
	styler := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(profile))
	styler.SetColorProfile(profile)

	walker := &markdownWalker{
		source:  source,
		theme:   theme,
		width:   width,
		profile: profile,
		styler:  styler,
	}
	ast.Walk(document, walker.walk)
	return strings.TrimRight(walker.out.String(), "\n")
}

// markdownWalker turns a goldmark AST into styled terminal text. It
// walks the tree directly instead of implementing goldmark's renderer
// interface: paragraph content must accumulate and then word-wrap as a
// unit, which does not fit goldmark's streaming callbacks.
type markdownWalker struct {
	source  []byte
	theme   Theme
	width   int
	profile termenv.Profile
	styler  *lipgloss.Renderer

	out strings.Builder

	// inline collects styled fragments inside a paragraph or heading,
	// flushed with word-wrap when the block closes.
	inline strings.Builder

	// indent is the accumulated prefix for nested blocks (blockquote
	// bars, list continuations). firstLinePrefix, when set, replaces
	// the indent for exactly one line (a list item's bullet line).
	indent          []indentLevel
	indentText      string
	indentWidth     int
	firstLinePrefix string

	bold      int
	italic    int
	strike    int
	lists     []listLevel
	lineState int // trailing newline count at the end of out
}

type indentLevel struct {
	text  string
	width int
}

type listLevel struct {
	ordered bool
	number  int
	tight   bool
}

func (w *markdownWalker) style() lipgloss.Style {
	return w.styler.NewStyle()
}

// contentWidth is the wrap width after subtracting indentation, with a
// floor that keeps degenerate widths readable.
func (w *markdownWalker) contentWidth() int {
	width := w.width - w.indentWidth
	if width < 10 {
		width = 10
	}
	return width
}

func (w *markdownWalker) pushIndent(text string, width int) {
	w.indent = append(w.indent, indentLevel{text: text, width: width})
	w.indentText += text
	w.indentWidth += width
}

func (w *markdownWalker) popIndent() {
	if len(w.indent) == 0 {
		return
	}
	top := w.indent[len(w.indent)-1]
	w.indent = w.indent[:len(w.indent)-1]
	w.indentText = w.indentText[:len(w.indentText)-len(top.text)]
	w.indentWidth -= top.width
}

func (w *markdownWalker) inTightList() bool {
	return len(w.lists) > 0 && w.lists[len(w.lists)-1].tight
}

func (w *markdownWalker) write(s string) {
	if s == "" {
		return
	}
	w.out.WriteString(s)

	trailing := 0
	allNewlines := true
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '\n' {
			allNewlines = false
			break
		}
		trailing++
	}
	if allNewlines {
		w.lineState += trailing
	} else {
		w.lineState = trailing
	}
}

func (w *markdownWalker) endLine() {
	if w.lineState < 1 {
		w.write("\n")
	}
}

func (w *markdownWalker) blankLine() {
	for w.lineState < 2 {
		w.write("\n")
	}
}

// linePrefix returns the prefix for the next emitted line, consuming
// the one-shot bullet prefix when set.
func (w *markdownWalker) linePrefix() string {
	if w.firstLinePrefix != "" {
		prefix := w.firstLinePrefix
		w.firstLinePrefix = ""
		return prefix
	}
	return w.indentText
}

// indented prepends line prefixes to every line of content.
func (w *markdownWalker) indented(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for i, line := range lines {
		if i == 0 {
			result.WriteString(w.linePrefix())
		} else {
			result.WriteString(w.indentText)
		}
		result.WriteString(line)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// flushInline wraps and indents the accumulated inline content.
func (w *markdownWalker) flushInline() string {
	content := w.inline.String()
	w.inline.Reset()
	if content == "" {
		return ""
	}
	return w.indented(ansi.Wrap(content, w.contentWidth(), wrapBreakpoints))
}

// styledText renders content with the currently open inline styles.
func (w *markdownWalker) styledText(content string) string {
	style := w.style().Foreground(w.theme.NormalText)
	if w.bold > 0 {
		style = style.Bold(true)
	}
	if w.italic > 0 {
		style = style.Italic(true)
	}
	if w.strike > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// inlineContent renders a node's children into a string, saving and
// restoring the walker's inline state around the excursion.
func (w *markdownWalker) inlineContent(node ast.Node) string {
	savedInline := w.inline.String()
	savedBold, savedItalic, savedStrike := w.bold, w.italic, w.strike

	w.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, w.walk)
	}
	result := w.inline.String()

	w.inline.Reset()
	w.inline.WriteString(savedInline)
	w.bold, w.italic, w.strike = savedBold, savedItalic, savedStrike
	return result
}

func (w *markdownWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			w.inline.Reset()
		} else if flushed := w.flushInline(); flushed != "" {
			w.write(flushed)
			w.endLine()
			if !w.inTightList() {
				w.blankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			w.inline.Reset()
		} else {
			w.closeHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			w.writeCodeBlock(w.nodeLines(node), string(block.Language(w.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			w.writeCodeBlock(w.nodeLines(node), "")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			w.pushIndent("│ ", 2)
		} else {
			w.popIndent()
			w.blankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			start := 0
			if list.IsOrdered() {
				start = list.Start
			}
			w.lists = append(w.lists, listLevel{
				ordered: list.IsOrdered(),
				number:  start,
				tight:   list.IsTight,
			})
		} else {
			if len(w.lists) > 0 {
				w.lists = w.lists[:len(w.lists)-1]
			}
			if !w.inTightList() {
				w.blankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			w.openListItem()
		} else {
			w.popIndent()
			if w.inTightList() {
				w.endLine()
			} else {
				w.blankLine()
			}
		}

	case ast.KindThematicBreak:
		if entering {
			rule := w.style().Foreground(w.theme.BorderColor).
				Render(strings.Repeat("─", w.contentWidth()))
			w.blankLine()
			w.write(w.indented(rule))
			w.endLine()
			w.blankLine()
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			w.inline.WriteString(w.styledText(string(textNode.Segment.Value(w.source))))
			if textNode.SoftLineBreak() {
				// Soft breaks become spaces so the prose reflows.
				w.inline.WriteString(" ")
			}
			if textNode.HardLineBreak() {
				w.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			w.inline.WriteString(w.styledText(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if emphasis.Level >= 2 {
			w.bold += delta
		} else {
			w.italic += delta
		}

	case extast.KindStrikethrough:
		if entering {
			w.strike++
		} else {
			w.strike--
		}

	case ast.KindCodeSpan:
		if entering {
			w.writeCodeSpan(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			link := node.(*ast.Link)
			w.inline.WriteString(w.inlineContent(node))
			if url := string(link.Destination); url != "" {
				faint := w.style().Foreground(w.theme.FaintText)
				w.inline.WriteString(" " + faint.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(w.source))
			w.inline.WriteString(w.style().Foreground(w.theme.FaintText).Render(url))
		}

	case ast.KindImage:
		if entering {
			faint := w.style().Foreground(w.theme.FaintText)
			w.inline.WriteString(faint.Render("[" + w.inlineContent(node) + "]"))
			if url := string(node.(*ast.Image).Destination); url != "" {
				w.inline.WriteString(" " + faint.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTable:
		if entering {
			w.writeTable(node.(*extast.Table))
			return ast.WalkSkipChildren, nil
		}
	}

	return ast.WalkContinue, nil
}

// nodeLines concatenates a block node's source lines.
func (w *markdownWalker) nodeLines(node ast.Node) string {
	var content strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content.Write(line.Value(w.source))
	}
	return content.String()
}

func (w *markdownWalker) closeHeading(heading *ast.Heading) {
	// Headings carry their own style; drop the inline styling the text
	// nodes already applied.
	content := ansi.Strip(w.inline.String())
	w.inline.Reset()
	if content == "" {
		return
	}

	style := w.style().Bold(true).Foreground(w.theme.NormalText)
	if heading.Level <= 2 {
		style = style.Foreground(w.theme.HeaderForeground)
	}

	wrapped := ansi.Wrap(style.Render(content), w.contentWidth(), wrapBreakpoints)
	w.blankLine()
	w.write(w.indented(wrapped))
	w.endLine()
	w.blankLine()
}

// writeCodeBlock emits a code block, chroma-highlighted when the fence
// names a language chroma knows. Highlighting failures fall back to
// faint plain text rather than failing the render. Chroma emits its
// own escape sequences, so it is bypassed entirely when the profile
// disables color.
func (w *markdownWalker) writeCodeBlock(code, language string) {
	var highlighted string
	if language != "" && w.profile != termenv.Ascii {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err == nil {
			highlighted = buffer.String()
		}
	}
	if highlighted == "" {
		highlighted = w.style().Foreground(w.theme.FaintText).Render(code)
	}

	w.blankLine()
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		w.write(w.linePrefix() + line)
		w.endLine()
	}
	w.blankLine()
}

func (w *markdownWalker) writeCodeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Text:
			code.Write(typed.Segment.Value(w.source))
		case *ast.String:
			code.Write(typed.Value)
		}
	}
	w.inline.WriteString(w.style().Foreground(w.theme.FaintText).Render(code.String()))
}

func (w *markdownWalker) openListItem() {
	if len(w.lists) == 0 {
		return
	}
	top := &w.lists[len(w.lists)-1]

	var bullet string
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.number)
		top.number++
	} else {
		bullet = "- "
	}

	// The bullet replaces the whole indent on the item's first line;
	// continuation lines align under the text.
	w.firstLinePrefix = w.indentText + bullet
	w.pushIndent(strings.Repeat(" ", len(bullet)), len(bullet))
}

// writeTable renders a GFM table as padded columns separated by two
// spaces, with a rule under the header. Cells too wide for their
// column are truncated with an ellipsis.
func (w *markdownWalker) writeTable(table *extast.Table) {
	var header []string
	var rows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			header = w.tableCells(child)
		case extast.KindTableRow:
			rows = append(rows, w.tableCells(child))
		}
	}

	columns := len(header)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}
	if columns == 0 {
		return
	}

	widths := make([]int, columns)
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < columns {
				if cw := lipgloss.Width(cell); cw > widths[i] {
					widths[i] = cw
				}
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	// Shrink proportionally when the table overflows the terminal.
	const separator = "  "
	total := len(separator) * (columns - 1)
	for _, cw := range widths {
		total += cw
	}
	if available := w.contentWidth(); total > available {
		usable := available - len(separator)*(columns-1)
		if usable < columns*3 {
			usable = columns * 3
		}
		for i := range widths {
			widths[i] = (widths[i] * usable) / total
			if widths[i] < 3 {
				widths[i] = 3
			}
		}
	}

	w.blankLine()
	if len(header) > 0 {
		bold := w.style().Bold(true).Foreground(w.theme.NormalText)
		w.write(w.linePrefix() + w.tableRow(header, widths, table.Alignments, bold))
		w.endLine()

		var parts []string
		for _, cw := range widths {
			parts = append(parts, strings.Repeat("─", cw))
		}
		border := w.style().Foreground(w.theme.BorderColor)
		w.write(w.indentText + border.Render(strings.Join(parts, separator)))
		w.endLine()
	}
	for _, row := range rows {
		w.write(w.indentText + w.tableRow(row, widths, table.Alignments, w.style()))
		w.endLine()
	}
	w.blankLine()
}

func (w *markdownWalker) tableCells(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, w.inlineContent(cell))
		}
	}
	return cells
}

func (w *markdownWalker) tableRow(cells []string, widths []int, alignments []extast.Alignment, style lipgloss.Style) string {
	var parts []string
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if lipgloss.Width(cell) > width {
			cell = ansi.Truncate(cell, width, "…")
		}

		padding := width - lipgloss.Width(cell)
		if padding < 0 {
			padding = 0
		}
		var alignment extast.Alignment
		if i < len(alignments) {
			alignment = alignments[i]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			left := padding / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", padding-left)
		default:
			cell += strings.Repeat(" ", padding)
		}
		parts = append(parts, cell)
	}
	return style.Render(strings.Join(parts, "  "))
}
