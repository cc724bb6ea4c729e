package history

import "strings"

// ParseMediaList parses the legacy bracketed-list media field, e.g.
// "[http://a.jpg, http://b.jpg]". The format is an ad-hoc stringified
// list, so parsing is defensive: unbalanced brackets are tolerated,
// elements are trimmed of whitespace and quote characters, and blank
// elements are dropped. "", "[]" and the literal NaN marker all parse
// to an empty list.
func ParseMediaList(raw string) []string {
	s := normalizeText(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, " \t\r\n'\"")
		if p == "" {
			continue
		}
		urls = append(urls, p)
	}
	return urls
}
