// Package analyzer estimates how many scalar values a C++ program will read
// from standard input, by lexically scanning for cin extraction chains.
//
// The scan is purely lexical: a read inside a loop or conditional is counted
// once, regardless of how often it runs. That is a documented limitation of
// the heuristic, not something this package tries to correct.
package analyzer

import "regexp"

// chainRe matches a cin extraction statement and captures the whole chain of
// ">> target" segments, e.g. `cin >> a >> b`.
var chainRe = regexp.MustCompile(`\bcin\b((?:\s*>>\s*[A-Za-z_][A-Za-z0-9_]*(?:\s*\[[^\]]*\])*)+)`)

// targetRe pulls individual extraction targets out of a captured chain.
var targetRe = regexp.MustCompile(`>>\s*([A-Za-z_][A-Za-z0-9_]*)((?:\s*\[[^\]]*\])*)`)

// identRe is a syntactically valid C++ identifier.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Count returns the estimated number of discrete values the source reads from
// standard input. It never fails; source with no cin extractions yields 0.
//
// Chained extractions are split into their targets, and only targets that are
// plain identifiers count. Indexed targets like `arr[i]` are skipped — we
// cannot tell how many elements they consume.
func Count(source string) int {
	n := 0
	for _, chain := range chainRe.FindAllStringSubmatch(source, -1) {
		for _, target := range targetRe.FindAllStringSubmatch(chain[1], -1) {
			// target[2] is non-empty for indexed targets like arr[i]
			if target[2] == "" && identRe.MatchString(target[1]) {
				n++
			}
		}
	}
	return n
}
