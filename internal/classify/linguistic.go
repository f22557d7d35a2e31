package classify

import (
	"sort"
	"strings"

	"github.com/Dixter999/agentmux/pkg/models"
)

// linguisticScan is the outcome of the keyword pass over the request text.
type linguisticScan struct {
	// kindHits counts keyword matches per task kind.
	kindHits map[models.TaskKind]int
	// characteristics holds the detected special characteristics.
	characteristics []models.Characteristic
	// wordCount is the total number of words in the request.
	wordCount int
	// sentenceCount is the coarse number of sentences.
	sentenceCount int
	// meanSentenceLength is words per sentence.
	meanSentenceLength float64
	// totalHits is the sum of all kind hits.
	totalHits int
}

// scanText runs the linguistic pass: keyword hits per kind, characteristic
// indicators, and a coarse sentence-complexity estimate. The scan is a pure
// function of the text.
func scanText(text string) linguisticScan {
	lower := strings.ToLower(text)

	scan := linguisticScan{kindHits: make(map[models.TaskKind]int)}

	for kind, table := range DefaultKindKeywords {
		hits := 0
		for _, kw := range table.Verbs {
			hits += strings.Count(lower, kw)
		}
		for _, kw := range table.Objects {
			hits += strings.Count(lower, kw)
		}
		if hits > 0 {
			scan.kindHits[kind] = hits
			scan.totalHits += hits
		}
	}

	for _, c := range orderedCharacteristics() {
		for _, kw := range characteristicKeywords[c] {
			if strings.Contains(lower, kw) {
				scan.characteristics = append(scan.characteristics, c)
				break
			}
		}
	}

	scan.wordCount = len(strings.Fields(text))
	scan.sentenceCount = countSentences(text)
	if scan.sentenceCount > 0 {
		scan.meanSentenceLength = float64(scan.wordCount) / float64(scan.sentenceCount)
	}

	return scan
}

// rankedKinds returns the kinds with hits, most hits first. Ties break
// alphabetically so the scan stays deterministic.
func (s linguisticScan) rankedKinds() []models.TaskKind {
	kinds := make([]models.TaskKind, 0, len(s.kindHits))
	for k := range s.kindHits {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if s.kindHits[kinds[i]] != s.kindHits[kinds[j]] {
			return s.kindHits[kinds[i]] > s.kindHits[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}

// orderedCharacteristics returns the characteristics in a fixed scan order
// so detection output is stable across runs.
func orderedCharacteristics() []models.Characteristic {
	return []models.Characteristic{
		models.CharPerformanceCritical,
		models.CharSecuritySensitive,
		models.CharExplanatory,
		models.CharCreative,
		models.CharPrecision,
		models.CharUrgent,
	}
}

// countSentences counts terminal punctuation runs as sentence boundaries.
// A trailing unterminated fragment still counts as one sentence.
func countSentences(text string) int {
	count := 0
	inTerminator := false
	sawWord := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inTerminator && sawWord {
				count++
				sawWord = false
			}
			inTerminator = true
		case ' ', '\t', '\n', '\r':
			inTerminator = false
		default:
			inTerminator = false
			sawWord = true
		}
	}
	if sawWord {
		count++
	}
	return count
}

// matchFactors sums the factor values of every table keyword present in the
// lowercased text.
func matchFactors(lower string, table complexityFactors) float64 {
	total := 0.0
	for kw, factor := range table {
		if strings.Contains(lower, kw) {
			total += factor
		}
	}
	return total
}
