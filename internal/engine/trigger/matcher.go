// Package trigger recognizes trigger keys under the cursor.
package trigger

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"go.trai.ch/intellitip/internal/core/domain"
)

const (
	postfixTokens  = `(?:--|-)(?:kvs|kv|edges|edge)\b`
	postfixPattern = `(?i)(?:--|-)(kvs|kv|edges|edge)\b`
)

var postfixRe = regexp.MustCompile(postfixPattern)

// keyPatterns holds the compiled patterns of one trigger key.
type keyPatterns struct {
	// target matches `<key> <target> [postfix...]`.
	target *regexp.Regexp
	// dotted matches `<key>.<seg>.<seg>`; nil for keys containing '@'.
	dotted *regexp.Regexp
}

// Matcher finds the trigger under a cursor position.
// Patterns are compiled once per trigger key and shared across requests.
type Matcher struct {
	mu       sync.RWMutex
	patterns map[string]*keyPatterns
}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{patterns: make(map[string]*keyPatterns)}
}

// Match returns the trigger whose target or postfix token spans column.
// column is a character offset into line. Domains and keys are tried in configuration
// order and the first hit wins.
func (m *Matcher) Match(line string, column int, settings *domain.Settings) (domain.Trigger, bool) {
	for _, d := range settings.Domains() {
		for _, b := range d.Bindings {
			t := domain.Trigger{Section: d.Section, CustomType: d.CustomType, Key: b.Key}
			if m.matchKey(line, column, &t) {
				return t, true
			}
		}
	}
	return domain.Trigger{}, false
}

func (m *Matcher) matchKey(line string, column int, t *domain.Trigger) bool {
	p := m.compile(t.Key)

	if p.dotted != nil {
		if segments := dottedSegments(line, p.dotted); len(segments) > 0 {
			t.Target = segments
			return true
		}
	}

	for _, loc := range p.target.FindAllStringSubmatchIndex(line, -1) {
		targetStart, targetEnd := loc[2], loc[3]
		if within(line, column, targetStart, targetEnd) {
			t.Target = []string{line[targetStart:targetEnd]}
			return true
		}

		chunkStart, chunkEnd := loc[4], loc[5]
		if chunkStart < 0 {
			continue
		}
		for _, pm := range postfixRe.FindAllStringSubmatchIndex(line[chunkStart:chunkEnd], -1) {
			if within(line, column, chunkStart+pm[0], chunkStart+pm[1]) {
				t.Target = []string{line[targetStart:targetEnd]}
				t.Postfix = domain.NormalizePostfix(line[chunkStart+pm[2] : chunkStart+pm[3]])
				return true
			}
		}
	}
	return false
}

func (m *Matcher) compile(key string) *keyPatterns {
	m.mu.RLock()
	p, ok := m.patterns[key]
	m.mu.RUnlock()
	if ok {
		return p
	}

	quoted := regexp.QuoteMeta(key)
	p = &keyPatterns{
		target: regexp.MustCompile(`(?i)` + quoted + `\s+(\S+)((?:\s+` + postfixTokens + `)*)`),
	}
	if !strings.Contains(key, "@") {
		p.dotted = regexp.MustCompile(quoted + `\.([\w.]+)`)
	}

	m.mu.Lock()
	m.patterns[key] = p
	m.mu.Unlock()
	return p
}

// dottedSegments extracts the segments of `<key>.a.b.c`, dropping trailing punctuation.
func dottedSegments(line string, re *regexp.Regexp) []string {
	match := re.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	path := strings.TrimRight(match[1], "();")

	var segments []string
	for _, s := range strings.Split(path, ".") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// within reports whether the character column lies in the byte range [start, end], inclusive.
func within(line string, column, start, end int) bool {
	cs := utf8.RuneCountInString(line[:start])
	ce := cs + utf8.RuneCountInString(line[start:end])
	return column >= cs && column <= ce
}
