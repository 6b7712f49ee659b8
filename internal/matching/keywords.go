// Package matching scores resources against a task's skill requirements and availability.
package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minKeywordLen is the shortest token kept by ExtractKeywords, in runes.
const minKeywordLen = 3

// stopWords are dropped from both task text and skill text.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "into": true, "is": true, "it": true, "its": true,
	"not": true, "of": true, "on": true, "or": true, "our": true, "that": true,
	"the": true, "their": true, "then": true, "this": true, "to": true, "was": true,
	"were": true, "will": true, "with": true, "your": true, "all": true, "any": true,
	"can": true, "out": true, "via": true, "per": true, "than": true, "who": true,
	"what": true, "when": true, "which": true, "should": true, "must": true, "also": true,
}

// ExtractKeywords lowercases text, splits it on runs of non-alphanumeric runes, and drops
// short tokens and stop words. The result is de-duplicated in first-seen order.
func ExtractKeywords(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < minKeywordLen || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

// SkillMatches reports whether a declared skill is satisfied by the task. taskText must
// already be lowercased and taskKeywords must come from ExtractKeywords on the same text.
//
// The rule is bidirectional: a skill keyword found inside the task text matches, and so
// does a task keyword found inside the raw skill string.
func SkillMatches(skill, taskText string, taskKeywords []string) bool {
	for _, kw := range ExtractKeywords(skill) {
		if strings.Contains(taskText, kw) {
			return true
		}
	}

	rawSkill := strings.ToLower(skill)
	for _, kw := range taskKeywords {
		if strings.Contains(rawSkill, kw) {
			return true
		}
	}
	return false
}
