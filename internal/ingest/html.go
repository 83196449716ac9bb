package ingest

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/lesson-factory/internal/types"
)

// noiseSelector matches chrome that never carries lesson content.
const noiseSelector = "nav, footer, header, script, style, noscript, aside, .sidebar"

// contentSelectors are tried in order; the first match becomes the content
// root. Falls back to body when none match.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	"#content",
	".lesson-content",
	"#lesson-content",
}

// ExtractItems parses HTML and returns the ordered item sequence. Paragraphs
// and list entries under the content root each become one item, numbered in
// document order.
func ExtractItems(html string) ([]types.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Message: "failed to parse HTML", Cause: err}
	}

	doc.Find(noiseSelector).Remove()

	var root *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			root = selection.First()
			break
		}
	}
	if root == nil {
		root = doc.Find("body")
	}

	var items []types.Item
	root.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		// Skip list containers whose text is only their children's.
		if s.Is("li") && s.Find("li").Length() > 0 {
			return
		}
		text := multiSpace.ReplaceAllString(strings.TrimSpace(s.Text()), " ")
		if text == "" {
			return
		}
		items = append(items, types.NewItem(len(items)+1, text))
	})

	if len(items) == 0 {
		return nil, &Error{Message: fmt.Sprintf("no content found under %q or body", strings.Join(contentSelectors, ", "))}
	}
	return items, nil
}
