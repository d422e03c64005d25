package textproc

import "strings"

// DefaultChunkSize is a conservative character limit for the speech
// model's input window.
const DefaultChunkSize = 250

// SplitChunks packs whole sentences into chunks of at most max characters.
// A single sentence longer than max passes through as its own chunk,
// unsplit. Joining the chunks with single spaces recovers the input up to
// whitespace normalization.
func SplitChunks(text string, max int) []string {
	if max <= 0 {
		max = DefaultChunkSize
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() == 0 {
			current.WriteString(sentence)
			continue
		}
		if current.Len()+1+len(sentence) <= max {
			current.WriteByte(' ')
			current.WriteString(sentence)
			continue
		}
		chunks = append(chunks, current.String())
		current.Reset()
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
