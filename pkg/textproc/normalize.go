// Package textproc turns raw PDF text into speakable prose and splits it
// into synthesis-sized chunks.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reWhitespace   = regexp.MustCompile(`\s+`)
	reLeadingPage  = regexp.MustCompile(`^\d+\s*`)
	reTrailingPage = regexp.MustCompile(`\s*\d+$`)
	reChapter      = regexp.MustCompile(`(?i)^(Chapter \d+|CHAPTER \d+|Life 3\.0)`)
	reLowerUpper   = regexp.MustCompile(`([a-z])([A-Z])`)
	reLetterDigit  = regexp.MustCompile(`([a-zA-Z])(\d)`)
	reDigitLetter  = regexp.MustCompile(`(\d)([a-zA-Z])`)
	reDots         = regexp.MustCompile(`\.{3,}`)
	reDashes       = regexp.MustCompile(`-{2,}`)
	reSpaceBefore  = regexp.MustCompile(`\s+([,.!?;:])`)
	reSpaceAfter   = regexp.MustCompile(`([,.!?;:])([^\s.,!?;:])`)
	reBlacklist    = regexp.MustCompile(`[^\w\s.,!?;:'"()\[\]{}\-–—]`)
	reDigitWord    = regexp.MustCompile(`(\d\s+)([a-z])`)
	reSentenceEnd  = regexp.MustCompile(`[.!?]\s+`)
)

// Normalizer applies the cleanup rules in a fixed order. It is pure and
// deterministic; malformed input degrades to a shorter string, never an error.
type Normalizer struct {
	// WordJoinFix repairs PDF word-joining artifacts by inserting spaces
	// at lowercase-uppercase and letter-digit transitions. It will also
	// split intentional CamelCase and alphanumeric identifiers.
	WordJoinFix bool
}

func NewNormalizer() *Normalizer {
	return &Normalizer{WordJoinFix: true}
}

// Normalize cleans raw extracted text with the package defaults.
func Normalize(raw string) string {
	return NewNormalizer().Normalize(raw)
}

func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := reWhitespace.ReplaceAllString(raw, " ")
	text = strings.TrimSpace(text)

	// Standalone page numbers and heading boilerplate.
	text = reLeadingPage.ReplaceAllString(text, "")
	text = reTrailingPage.ReplaceAllString(text, "")
	text = reChapter.ReplaceAllString(text, "")

	if n.WordJoinFix {
		text = reLowerUpper.ReplaceAllString(text, "$1 $2")
		text = reLetterDigit.ReplaceAllString(text, "$1 $2")
		text = reDigitLetter.ReplaceAllString(text, "$1 $2")
	}

	// Repeated punctuation.
	text = reDots.ReplaceAllString(text, "...")
	text = reDashes.ReplaceAllString(text, " -- ")

	// Spacing around punctuation. The after-rule skips punctuation runs so
	// an ellipsis stays intact.
	text = reSpaceBefore.ReplaceAllString(text, "$1")
	text = reSpaceAfter.ReplaceAllString(text, "$1 $2")

	text = reBlacklist.ReplaceAllString(text, "")

	text = recapitalize(text)
	if n.WordJoinFix {
		// A word trailing a standalone number starts a repaired word.
		text = reDigitWord.ReplaceAllStringFunc(text, func(m string) string {
			return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
		})
	}

	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// recapitalize uppercases the first letter of every sentence and drops
// degenerate one-character sentences left over from punctuation cleanup.
func recapitalize(text string) string {
	sentences := SplitSentences(text)
	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) <= 1 {
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		kept = append(kept, string(unicode.ToUpper(r))+s[size:])
	}
	return strings.Join(kept, " ")
}

// SplitSentences splits text after sentence-ending punctuation followed by
// whitespace. The punctuation stays with the preceding sentence and nothing
// is dropped, so joining the parts with single spaces recovers the input up
// to whitespace.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range reSentenceEnd.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation mark; the sentence ends right after it.
		end := loc[0] + 1
		sentences = append(sentences, strings.TrimSpace(text[start:end]))
		start = loc[1]
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
