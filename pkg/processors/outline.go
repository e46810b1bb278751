package processors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

const (
	PageTypeCover   = "cover"
	PageTypeContent = "content"
	PageTypeSummary = "summary"

	coverMarker   = "[封面]"
	summaryMarker = "[总结]"

	suggestionFallbackLen = 100
)

var (
	pageDelimiter = regexp.MustCompile(`(?i)<page>`)
	titleField    = regexp.MustCompile(`(?:标题|Title|主题)[：:](.*?)(?:\n|$)`)
	imageField    = regexp.MustCompile(`(?:配图建议|背景|Image Suggestion|Background)[：:](.*?)(?:\n|$)`)
)

// ParseOutline splits raw outline text on <page> markers into pages. Empty
// segments are dropped and the remaining pages are numbered from 1.
func ParseOutline(text string) []api.OutlinePage {
	pages := make([]api.OutlinePage, 0)

	for _, segment := range pageDelimiter.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		num := len(pages) + 1

		title := labeledField(titleField, segment)
		if title == "" {
			title = fmt.Sprintf("Page %d", num)
		}

		suggestion := labeledField(imageField, segment)
		if suggestion == "" {
			suggestion = truncate(segment, suggestionFallbackLen)
		}

		pages = append(pages, api.OutlinePage{
			PageNum:         num,
			Type:            pageType(segment),
			Title:           title,
			MainContent:     segment,
			ImageSuggestion: suggestion,
		})
	}

	return pages
}

func pageType(segment string) string {
	switch {
	case strings.Contains(segment, coverMarker):
		return PageTypeCover
	case strings.Contains(segment, summaryMarker):
		return PageTypeSummary
	default:
		return PageTypeContent
	}
}

func labeledField(re *regexp.Regexp, segment string) string {
	m := re.FindStringSubmatch(segment)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
