package textstats

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExtraStopWords are words common to nearly every posting.
var ExtraStopWords = []string{
	"experience", "position", "work", "please", "click", "must", "may", "required", "preferred",
	"type", "including", "strong", "ability", "needs", "apply", "skills", "requirements", "company",
	"knowledge", "job", "responsibilities",
}

// StopWords merges the language defaults, ExtraStopWords, any additional
// words, the lowercased location and each of its whitespace-separated parts.
func StopWords(defaults []string, additional []string, location string) map[string]struct{} {
	lower := cases.Lower(language.Und)
	set := make(map[string]struct{}, len(defaults)+len(ExtraStopWords)+len(additional)+4)
	add := func(word string) {
		word = strings.TrimSpace(lower.String(word))
		if word == "" {
			return
		}
		set[word] = struct{}{}
	}

	for _, word := range defaults {
		add(word)
	}
	for _, word := range ExtraStopWords {
		add(word)
	}
	for _, word := range additional {
		add(word)
	}

	loc := lower.String(location)
	add(loc)
	for _, part := range strings.Fields(loc) {
		add(part)
	}
	return set
}
