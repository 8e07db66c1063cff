package story

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"bedtime-story-api/internal/domain/entity"
)

var (
	headingPrefix = regexp.MustCompile(`^#+\s*`)
	blankLineRun  = regexp.MustCompile(`\n{3,}`)
)

// SplitTitleAndBody 将生成文本拆分为标题与正文
// 首行为标题（去掉 markdown 标题符号，最多 140 字符），其余为正文
func SplitTitleAndBody(raw string) (title, body string) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))

	first, rest, _ := strings.Cut(text, "\n")

	title = strings.TrimSpace(first)
	title = headingPrefix.ReplaceAllString(title, "")
	title = truncateByRunes(title, entity.StoryTitleMaxLen)
	if title == "" {
		title = entity.StoryFallbackTitle
	}

	body = blankLineRun.ReplaceAllString(rest, "\n\n")
	body = strings.TrimSpace(body)
	return title, body
}

func truncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
