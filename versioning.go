package foundation

import "strconv"

// HandlerVersioningStrategy tells a generated bus which handler version to
// resolve when a contract has several versioned handlers.
//
// A strategy that skips resolution makes the bus report "no handler" even
// when a single candidate exists.
type HandlerVersioningStrategy struct {
	skip            bool
	latest          bool
	specificVersion int
}

// UseLatestVersion selects the handler with the highest version.
// It is the default strategy of generated buses.
func UseLatestVersion() HandlerVersioningStrategy {
	return HandlerVersioningStrategy{latest: true}
}

// UseSpecificVersion selects the handler declared with exactly this version.
func UseSpecificVersion(version int) HandlerVersioningStrategy {
	return HandlerVersioningStrategy{specificVersion: version}
}

// SkipResolution makes the bus resolve no handler.
func SkipResolution() HandlerVersioningStrategy {
	return HandlerVersioningStrategy{skip: true}
}

// Skip reports whether resolution must be skipped.
func (s HandlerVersioningStrategy) Skip() bool {
	return s.skip
}

// UseLatestVersion reports whether the latest version is requested.
func (s HandlerVersioningStrategy) UseLatestVersion() bool {
	return s.latest
}

// SpecificVersion returns the requested version when UseLatestVersion is false.
func (s HandlerVersioningStrategy) SpecificVersion() int {
	return s.specificVersion
}

// String returns a readable form of the strategy.
func (s HandlerVersioningStrategy) String() string {
	switch {
	case s.skip:
		return "skip"
	case s.latest:
		return "latest"
	default:
		return "version " + strconv.Itoa(s.specificVersion)
	}
}
