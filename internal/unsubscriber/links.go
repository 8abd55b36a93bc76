package unsubscriber

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listUnsubscribeRe extracts angle-bracketed URLs, the convention used
// by the List-Unsubscribe mail header.
var listUnsubscribeRe = regexp.MustCompile(`<(https?://[^>]+)>`)

// ExtractLinks scans message content for candidate unsubscribe URLs:
// anchors whose text or href expresses unsubscribe intent, plus any
// angle-bracketed URL anywhere in the raw content. The result is
// de-duplicated and kept in first-seen order so attempts are
// reproducible.
func ExtractLinks(content string) []string {
	var links []string
	seen := make(map[string]struct{})

	add := func(link string) {
		if link == "" {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			text := strings.ToLower(strings.TrimSpace(sel.Text()))
			if unsubscribeIntent.Match(text) || unsubscribeIntent.Match(href) {
				add(href)
			}
		})
	}

	for _, m := range listUnsubscribeRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}

	return links
}
