package render

import "regexp"

// urlPattern matches absolute http(s) URLs. Trailing punctuation that is
// almost never part of a URL (sentence periods, commas, closing brackets)
// is excluded from the match, and the host may be a single character.
var urlPattern = regexp.MustCompile(`https?://[^\s]*[^\s.,;:!?)\]}'"]`)

// Segment is one run of a rendered line: either plain text or a hyperlink.
// Link segments carry the attributes for opening in a new browsing context
// without a back-reference to the opener, and their visible text is the
// literal matched URL.
type Segment struct {
	Text string `json:"text"`
	Link bool   `json:"link"`
	Href string `json:"href,omitempty"`
}

// Linkify splits a line's content into plain and link segments. Original
// spacing is preserved across plain segments; every absolute URL substring
// becomes its own link segment.
func Linkify(content string) []Segment {
	matches := urlPattern.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return []Segment{{Text: content}}
	}

	var segs []Segment
	prev := 0
	for _, m := range matches {
		if m[0] > prev {
			segs = append(segs, Segment{Text: content[prev:m[0]]})
		}
		url := content[m[0]:m[1]]
		segs = append(segs, Segment{Text: url, Link: true, Href: url})
		prev = m[1]
	}
	if prev < len(content) {
		segs = append(segs, Segment{Text: content[prev:]})
	}
	return segs
}
