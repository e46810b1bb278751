package gemini

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when neither parse attempt yields JSON.
var ErrInvalidJSON = errors.New("response is not valid JSON")

var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	anyFence  = regexp.MustCompile("(?s)```(.*?)```")
)

const snippetLen = 200

// ParseJSON parses model output as JSON. The text is parsed directly first;
// if that fails, the body of a ```json fence, else of any ``` fence, else the
// whole text is trimmed and parsed.
func ParseJSON(text string) (any, error) {
	if gjson.Valid(text) {
		return gjson.Parse(text).Value(), nil
	}

	candidate := strings.TrimSpace(extractFenced(text))
	if candidate == "" || !gjson.Valid(candidate) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, snippet(text))
	}
	return gjson.Parse(candidate).Value(), nil
}

func extractFenced(text string) string {
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := anyFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}
