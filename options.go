package dac

import "fmt"

// BuildOptions configures Build: exported fields with the default
// documented inline, plus a Validate method.
type BuildOptions struct {
	// Overhead is the fractional cost of one rank-indexed continuation
	// bit relative to a raw payload bit, used by the level-width
	// optimizer. Must be in (0, 1). Default: 0.05.
	Overhead float64
}

// DefaultBuildOptions returns the recommended default overhead constant.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Overhead: 0.05}
}

// Validate reports whether o is usable by Build.
func (o BuildOptions) Validate() error {
	if !(o.Overhead > 0 && o.Overhead < 1) {
		return fmt.Errorf("dac: overhead %v not in (0, 1): %w", o.Overhead, ErrInvalidInput)
	}
	return nil
}
