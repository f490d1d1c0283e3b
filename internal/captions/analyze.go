package captions

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	segmentLength   = 60
	segmentTextMax  = 100
	topKeywords     = 25
	minPhraseCount  = 3
	topBigrams      = 15
	topTrigrams     = 10
	topQuadgrams    = 5
	minKeywordRunes = 2
)

var (
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	wordRe  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

var stopWords = toSet(
	"a", "an", "the", "and", "or", "but", "is", "are", "was", "were", "be", "been",
	"have", "has", "had", "do", "does", "did", "to", "from", "in", "out", "on", "off",
	"over", "under", "again", "further", "then", "once", "here", "there", "when",
	"where", "why", "how", "all", "any", "both", "each", "few", "more", "most",
	"other", "some", "such", "no", "nor", "not", "only", "own", "same", "so",
	"than", "too", "very", "s", "t", "can", "will", "just", "don", "should", "now",
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself", "she", "her",
	"hers", "herself", "it", "its", "itself", "they", "them", "their", "theirs",
	"themselves", "what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "um", "uh", "oh", "like", "yeah", "gonna", "go", "get",
)

var stopBigrams = toSet(
	"of the", "in the", "to the", "on the", "for the", "with the", "at the",
	"from the", "by the", "as the", "is the", "to be", "in a", "is a",
	"of a", "it is", "this is", "that is", "there is", "i think", "you know",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether word is excluded from keyword counts.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Count is a term and how often it occurred.
type Count struct {
	Term  string
	Count int
}

// KeywordReport summarises word usage across a track.
type KeywordReport struct {
	TotalWords     int
	Duration       float64
	WordsPerMinute int
	Top            []Count
}

// Keywords counts non stop-word tokens and returns the 25 most frequent.
func Keywords(entries []Entry) KeywordReport {
	clean := tagRe.ReplaceAllString(joinText(entries), "")
	clean = strings.ToLower(punctRe.ReplaceAllString(clean, ""))
	words := strings.Fields(clean)

	counter := newCounter()
	for _, w := range words {
		if IsStopWord(w) || utf8.RuneCountInString(w) < minKeywordRunes {
			continue
		}
		counter.add(w)
	}

	report := KeywordReport{
		TotalWords: len(words),
		Duration:   TotalDuration(entries),
		Top:        counter.top(topKeywords, 0),
	}
	if minutes := report.Duration / 60; minutes > 0 {
		report.WordsPerMinute = int(float64(report.TotalWords) / minutes)
	}
	return report
}

// Segment is the text spoken within one minute of the track.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Label formats the segment bounds as "MM:SS - MM:SS".
func (s Segment) Label() string {
	return Clock(s.Start) + " - " + Clock(s.End)
}

// Timeline buckets entries into 60 second segments by start time and returns
// the non-empty ones in order.
func Timeline(entries []Entry) []Segment {
	if len(entries) == 0 {
		return nil
	}

	total := TotalDuration(entries)
	n := int(total/segmentLength) + 1
	buckets := make([][]string, n)
	for _, e := range entries {
		i := int(e.StartSeconds / segmentLength)
		if i >= 0 && i < n {
			buckets[i] = append(buckets[i], e.Text)
		}
	}

	var segments []Segment
	for i, texts := range buckets {
		if len(texts) == 0 {
			continue
		}
		text := strings.Join(texts, " ")
		if r := []rune(text); len(r) > segmentTextMax {
			text = string(r[:segmentTextMax-3]) + "..."
		}
		segments = append(segments, Segment{
			Start: float64(i * segmentLength),
			End:   min(float64((i+1)*segmentLength), total),
			Text:  text,
		})
	}
	return segments
}

// Clock renders seconds as zero padded MM:SS.
func Clock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// PhraseReport lists recurring word sequences.
type PhraseReport struct {
	Bigrams   []Count
	Trigrams  []Count
	Quadgrams []Count
}

// Phrases finds 2, 3 and 4 word sequences that occur more than twice.
func Phrases(entries []Entry) PhraseReport {
	clean := tagRe.ReplaceAllString(joinText(entries), "")
	words := wordRe.FindAllString(strings.ToLower(clean), -1)

	bigrams := ngrams(words, 2)
	for term := range stopBigrams {
		bigrams.drop(term)
	}

	return PhraseReport{
		Bigrams:   bigrams.top(topBigrams, minPhraseCount),
		Trigrams:  ngrams(words, 3).top(topTrigrams, minPhraseCount),
		Quadgrams: ngrams(words, 4).top(topQuadgrams, minPhraseCount),
	}
}

func ngrams(words []string, n int) *counter {
	c := newCounter()
	for i := 0; i+n <= len(words); i++ {
		c.add(strings.Join(words[i:i+n], " "))
	}
	return c
}

func joinText(entries []Entry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, " ")
}

// counter keeps counts together with first-seen order so that ties are
// reported in the order the terms appeared.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(term string) {
	if _, ok := c.counts[term]; !ok {
		c.order = append(c.order, term)
	}
	c.counts[term]++
}

func (c *counter) drop(term string) {
	delete(c.counts, term)
}

func (c *counter) top(limit, minCount int) []Count {
	var out []Count
	for _, term := range c.order {
		n, ok := c.counts[term]
		if !ok || n < minCount {
			continue
		}
		out = append(out, Count{Term: term, Count: n})
	}
	slices.SortStableFunc(out, func(a, b Count) int {
		return b.Count - a.Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
