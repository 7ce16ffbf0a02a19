// Package metadata pulls the title, body and tags out of a raw manual block.
//
// Manuals may annotate blocks explicitly:
//
//	[titulo=Instalación]
//	[información=Conecte el equipo ...]
//	[etiquetas=red, router]
//
// When the title or body marker is missing the block is treated as free text.
package metadata

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTitle is returned when a block has neither a title marker nor an uppercase heading line.
const DefaultTitle = "Sin título"

const (
	maxHeadingLength = 50
	maxDerivedTags   = 5
	minTagLength     = 4
)

var (
	titleMarker = regexp.MustCompile(`(?i)\[titulo=(.*?)\]`)
	bodyMarker  = regexp.MustCompile(`(?is)\[información=(.*?)\]`)
	tagsMarker  = regexp.MustCompile(`(?i)\[etiquetas=(.*?)\]`)

	// Candidate words are whole \w runs; only runs made of tagLetters qualify.
	wordRun = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

func isTagLetter(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return strings.ContainsRune("áéíóúüñ", r)
}

// Extract returns (title, body, tags) for one block. It never fails.
func Extract(block string) (string, string, []string) {
	var (
		title string
		body  string
		tags  []string
	)

	if m := titleMarker.FindStringSubmatch(block); m != nil {
		title = strings.TrimSpace(m[1])
	}
	if m := bodyMarker.FindStringSubmatch(block); m != nil {
		body = strings.TrimSpace(m[1])
	}
	if m := tagsMarker.FindStringSubmatch(block); m != nil {
		tags = strings.Split(strings.TrimSpace(m[1]), ", ")
	}

	if title == "" || body == "" {
		lines := strings.Split(block, "\n")
		for _, line := range lines {
			if utf8.RuneCountInString(line) < maxHeadingLength && isUpper(line) {
				if title == "" {
					title = strings.TrimSpace(line)
				}
				break
			}
		}
		if body == "" {
			body = strings.TrimSpace(block)
		}
		if len(tags) == 0 {
			tags = TopWords(body, maxDerivedTags)
		}
	}

	if title == "" {
		title = DefaultTitle
	}
	if tags == nil {
		tags = []string{}
	}
	return title, body, tags
}

// isUpper reports whether s has at least one cased letter and no lowercase ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// TopWords returns up to n of the most frequent qualifying words in text.
// Matching is case-sensitive; ties keep first-seen order.
func TopWords(text string, n int) []string {
	counts := make(map[string]int)
	var order []string

	for _, w := range wordRun.FindAllString(text, -1) {
		if utf8.RuneCountInString(w) < minTagLength || !onlyTagLetters(w) {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func onlyTagLetters(w string) bool {
	for _, r := range w {
		if !isTagLetter(r) {
			return false
		}
	}
	return true
}
