package trace

// MissingPolicy decides what a PhyTxEnd does with a record that lacks one of
// its two timestamps.
type MissingPolicy string

const (
	// MissingSkip drops the sample and logs a warning.
	MissingSkip MissingPolicy = "skip"
	// MissingZero records the packet with a zero access delay.
	MissingZero MissingPolicy = "zero"
)

// validMissingPolicies maps accepted policy strings.
var validMissingPolicies = map[MissingPolicy]bool{
	MissingSkip: true,
	MissingZero: true,
	"":          true, // empty defaults to skip
}

// IsValidMissingPolicy returns true if the given string is a recognized policy.
func IsValidMissingPolicy(policy string) bool {
	return validMissingPolicies[MissingPolicy(policy)]
}
