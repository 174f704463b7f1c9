// Package readtime estimates how long a post takes to read when it mixes
// Chinese prose, English prose and code.
package readtime

import (
	"regexp"
	"strings"
	"unicode"
)

// Reading speeds used by Estimate.
const (
	CJKCharsPerMinute     = 300
	EnglishWordsPerMinute = 200
	CodeLinesPerMinute    = 100
)

var (
	reFencedBlock = regexp.MustCompile("(?s)```.*?```")
	reInlineCode  = regexp.MustCompile("`[^`]+`")
	reEnglishWord = regexp.MustCompile(`[a-zA-Z]+`)
)

// cjk covers CJK unified ideographs, CJK symbols and punctuation, and
// halfwidth/fullwidth forms.
var cjk = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3000, Hi: 0x303f, Stride: 1},
		{Lo: 0x4e00, Hi: 0x9fa5, Stride: 1},
		{Lo: 0xff00, Hi: 0xffef, Stride: 1},
	},
}

// Stats is the breakdown behind an estimate.
type Stats struct {
	CJKChars     int
	EnglishWords int
	CodeLines    int
	Minutes      int
}

// Estimate returns the reading time of text in whole minutes, never less than 1.
func Estimate(text string) int {
	return Analyze(text).Minutes
}

// Analyze counts CJK characters, English words and fenced code lines in text
// and derives the reading time from them.
func Analyze(text string) Stats {
	var s Stats
	for _, block := range reFencedBlock.FindAllString(text, -1) {
		// Lines minus the two fences; a block opened and closed on one line
		// counts as -1.
		s.CodeLines += strings.Count(block, "\n") + 1 - 2
	}

	prose := reFencedBlock.ReplaceAllString(text, "")
	prose = reInlineCode.ReplaceAllString(prose, "")

	var b strings.Builder
	b.Grow(len(prose))
	for _, r := range prose {
		if unicode.Is(cjk, r) {
			s.CJKChars++
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	s.EnglishWords = len(reEnglishWord.FindAllStringIndex(b.String(), -1))

	s.Minutes = minutes(s.CJKChars, s.EnglishWords, s.CodeLines)
	return s
}

// minutes computes ceil(cjk/300 + words/200 + code/100) over the common
// denominator 600 so the sum stays exact. Sums at or below zero give 1.
func minutes(cjkChars, words, codeLines int) int {
	const denom = 600
	units := cjkChars*(denom/CJKCharsPerMinute) +
		words*(denom/EnglishWordsPerMinute) +
		codeLines*(denom/CodeLinesPerMinute)
	m := (units + denom - 1) / denom
	if m < 1 {
		return 1
	}
	return m
}
