package social

// NormalizePair returns the canonical ordering of an unordered user pair:
// first < second under plain string comparison. Every operation that
// stores or looks up a canonical relationship row goes through this, so a
// block issued by either side resolves to the same row.
func NormalizePair(a, b string) (first, second string) {
	if a < b {
		return a, b
	}
	return b, a
}
