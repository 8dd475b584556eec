package domain

import "go.trai.ch/zerr"

// Strategy controls how explicitly requested versions reconcile with a lockfile.
type Strategy string

const (
	// StrategyStrict requires the requested set to equal the lockfile set.
	StrategyStrict Strategy = "strict"
	// StrategyMerge tracks the union of both sets.
	StrategyMerge Strategy = "merge"
	// StrategyOverwrite tracks exactly the requested set.
	StrategyOverwrite Strategy = "overwrite"
)

// ParseStrategy validates a strategy name. An empty name selects strict.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyStrict, nil
	case StrategyStrict, StrategyMerge, StrategyOverwrite:
		return Strategy(s), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidStrategy, "unknown strategy"), "strategy", s)
	}
}

// SourceMode selects where the compare engine reads a version from.
type SourceMode string

const (
	// SourceLocal reads files from the storage backend only.
	SourceLocal SourceMode = "local"
	// SourceAPI reads files from the remote API only.
	SourceAPI SourceMode = "api"
	// SourcePreferLocal reads locally when the version is mirrored and remotely otherwise.
	SourcePreferLocal SourceMode = "prefer-local"
)

// ParseSourceMode validates a source mode name. An empty name selects prefer-local.
func ParseSourceMode(s string) (SourceMode, error) {
	switch SourceMode(s) {
	case "":
		return SourcePreferLocal, nil
	case SourceLocal, SourceAPI, SourcePreferLocal:
		return SourceMode(s), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidSourceMode, "unknown source mode"), "mode", s)
	}
}
