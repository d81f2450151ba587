package engine

import "strings"

// ConsensusSeparator joins disagreeing oracle answers.
const ConsensusSeparator = " or "

// Resolve merges the answers of every oracle, in registration order, into
// one category name. Duplicates collapse to their first occurrence; when
// more than one distinct answer remains they are all kept, joined by
// ConsensusSeparator.
func Resolve(answers []string) string {
	seen := make(map[string]struct{}, len(answers))
	distinct := make([]string, 0, len(answers))

	for _, answer := range answers {
		if _, dup := seen[answer]; dup {
			continue
		}
		seen[answer] = struct{}{}
		distinct = append(distinct, answer)
	}

	return strings.Join(distinct, ConsensusSeparator)
}
