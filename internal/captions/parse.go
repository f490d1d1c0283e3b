// Package captions parses SubRip caption tracks and derives keyword,
// timeline and phrase statistics from them.
package captions

import (
	"regexp"
	"strconv"
	"strings"
)

// Entry is one timed caption block.
type Entry struct {
	Index        int
	StartTime    string
	EndTime      string
	StartSeconds float64
	EndSeconds   float64
	Duration     float64
	Text         string
}

var (
	blockSep  = regexp.MustCompile(`\n[ \t]*\n`)
	blockRe   = regexp.MustCompile(`(?s)^(\d+)\s+(\d{2}:\d{2}:\d{2},\d{3})\s+-->\s+(\d{2}:\d{2}:\d{2},\d{3})\s+(.+)$`)
	timeParts = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})$`)
)

// Parse splits an SRT document into entries in source order. Blocks that do
// not have the index / timing / text shape are skipped.
func Parse(srt string) []Entry {
	srt = strings.TrimPrefix(srt, "\ufeff")
	srt = strings.ReplaceAll(srt, "\r\n", "\n")
	srt = strings.ReplaceAll(srt, "\r", "\n")

	var entries []Entry
	for _, block := range blockSep.Split(srt, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		m := blockRe.FindStringSubmatch(block)
		if m == nil {
			continue
		}

		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		start, ok := Seconds(m[2])
		if !ok {
			continue
		}
		end, ok := Seconds(m[3])
		if !ok {
			continue
		}

		entries = append(entries, Entry{
			Index:        index,
			StartTime:    m[2],
			EndTime:      m[3],
			StartSeconds: start,
			EndSeconds:   end,
			Duration:     end - start,
			Text:         strings.TrimSpace(m[4]),
		})
	}
	return entries
}

// Seconds converts an HH:MM:SS,mmm timestamp to fractional seconds.
func Seconds(ts string) (float64, bool) {
	m := timeParts.FindStringSubmatch(ts)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	ms, _ := strconv.Atoi(m[4])
	return float64(h*3600+mins*60+s) + float64(ms)/1000, true
}

// TotalDuration is the end time of the last entry.
func TotalDuration(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	return entries[len(entries)-1].EndSeconds
}
