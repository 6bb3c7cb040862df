package engine

// Output keys with engine-level meaning.
const (
	// KeyResult holds the result name of the registry call a step made.
	KeyResult = "result"
)

// Checker registration names.
const (
	CheckerNameDefault = "default"
	CheckerNameResult  = KeyResult

	// SuffixApprox marks a numeric expectation checked within tolerance.
	SuffixApprox = "_approx"
)
