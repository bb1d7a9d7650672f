package application

import (
	"regexp"
)

var (
	// imageTokenRegex matches well-formed tokens such as {{image:abc_123}}.
	imageTokenRegex = regexp.MustCompile(`\{\{(?i:image):\s*([A-Za-z0-9_-]+)\s*\}\}`)
	// looseImageTokenRegex matches anything shaped like a token, including malformed ids.
	looseImageTokenRegex = regexp.MustCompile(`\{\{(?i:image):([^{}]*)\}\}`)
	imageIDRegex         = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// imageToken formats the persisted reference for an image id.
func imageToken(id string) string {
	return "{{image:" + id + "}}"
}

// IsValidImageID reports whether id can be written inside an image token.
func IsValidImageID(id string) bool {
	return imageIDRegex.MatchString(id)
}

// parseImageToken returns the id of a single token matched by looseImageTokenRegex,
// or false when the token does not fit the strict grammar.
func parseImageToken(token string) (string, bool) {
	m := imageTokenRegex.FindStringSubmatch(token)
	if m == nil || m[0] != token {
		return "", false
	}
	return m[1], true
}

// ExtractTokenIDs returns the distinct image ids referenced by tokens in markdown,
// in order of first occurrence. Malformed tokens are ignored.
func ExtractTokenIDs(markdown string) []string {
	matches := imageTokenRegex.FindAllStringSubmatch(markdown, -1)
	ids := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
