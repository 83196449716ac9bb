package ingest

import (
	"regexp"
	"strings"

	"github.com/jonathan/lesson-factory/internal/types"
)

var multiSpace = regexp.MustCompile(`\s+`)
var excessBlankLines = regexp.MustCompile(`\n\n\n+`)

// CleanText normalizes raw text content while preserving block structure.
// Line endings become LF, trailing whitespace goes, runs of blank lines
// collapse to one separator.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = excessBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine normalizes one line. Markdown headings and bullets keep their
// markers so the splitter can recognize them.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	if isBulletLine(trimmed) {
		return trimmed
	}

	return multiSpace.ReplaceAllString(strings.TrimSpace(line), " ")
}

var bulletMarkers = []string{"- ", "* ", "• "}

func isBulletLine(trimmed string) bool {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

func stripBulletMarker(line string) string {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
	}
	return line
}

// SplitItems breaks cleaned text into the ordered item sequence. Blocks are
// separated by blank lines; within a block each bullet line is its own item;
// markdown headings are structural and are dropped. IDs are assigned
// sequentially from 1 in document order.
func SplitItems(content string) []types.Item {
	cleaned := CleanText(content)
	if cleaned == "" {
		return nil
	}

	var texts []string
	for _, block := range strings.Split(cleaned, "\n\n") {
		texts = append(texts, splitBlock(block)...)
	}

	items := make([]types.Item, 0, len(texts))
	for i, text := range texts {
		items = append(items, types.NewItem(i+1, text))
	}
	return items
}

// splitBlock turns one blank-line-delimited block into item texts. A block
// of prose becomes one item; bullet lines become one item each, stripped of
// their marker.
func splitBlock(block string) []string {
	var texts []string
	var prose []string

	flushProse := func() {
		if len(prose) > 0 {
			texts = append(texts, strings.Join(prose, " "))
			prose = nil
		}
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			flushProse()
		case isBulletLine(line):
			flushProse()
			texts = append(texts, stripBulletMarker(line))
		default:
			prose = append(prose, line)
		}
	}
	flushProse()

	return texts
}
