package core

// trueTokens is the ocf_is_true token set from ocf-shellfuncs. Matching is
// exact: "True" or "Yes" are false.
var trueTokens = map[string]struct{}{
	"yes":  {},
	"true": {},
	"1":    {},
	"YES":  {},
	"TRUE": {},
	"ya":   {},
	"on":   {},
	"ON":   {},
}

// IsTrue reports whether value is one of the accepted true tokens.
// Any other string, including "", is false.
func IsTrue(value string) bool {
	_, ok := trueTokens[value]
	return ok
}
