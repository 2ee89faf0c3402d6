package logger

// OutputCategory defines a category of CLI output that can be enabled/disabled.
//
// Unlike log levels, categories control WHAT is printed regardless of severity:
//
//	0 (default) - results, errors with hints, final status
//	1 (-v)      - + collection/translation counts, registered source roots
//	2 (-vv)     - + individual source files, effective config, timing
//	3 (-vvv)    - + translator stderr, raw watch events
type OutputCategory int

const (
	// Level 0 - Always shown
	OutputResults OutputCategory = iota
	OutputErrors
	OutputUserStatus

	// Level 1 (-v)
	OutputCounts
	OutputSourceRoots

	// Level 2 (-vv)
	OutputSourceFiles
	OutputConfig
	OutputTiming

	// Level 3 (-vvv)
	OutputCompilerStderr
	OutputWatchEvents
)

var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputCounts:      VerbosityInfo,
	OutputSourceRoots: VerbosityInfo,

	OutputSourceFiles: VerbosityDebug,
	OutputConfig:      VerbosityDebug,
	OutputTiming:      VerbosityDebug,

	OutputCompilerStderr: VerbosityTrace,
	OutputWatchEvents:    VerbosityTrace,
}

var categoryNames = map[OutputCategory]string{
	OutputResults:        "results",
	OutputErrors:         "errors",
	OutputUserStatus:     "status",
	OutputCounts:         "counts",
	OutputSourceRoots:    "source-roots",
	OutputSourceFiles:    "source-files",
	OutputConfig:         "config",
	OutputTiming:         "timing",
	OutputCompilerStderr: "compiler-stderr",
	OutputWatchEvents:    "watch-events",
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
