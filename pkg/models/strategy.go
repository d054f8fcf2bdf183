package models

// Strategy selects how a chapter's verses are partitioned into review groups
type Strategy string

const (
	// StrategyFixed partitions verses into consecutive runs of a fixed size
	StrategyFixed Strategy = "fixed"
	// StrategySection partitions verses along section boundary marks
	StrategySection Strategy = "section"
	// StrategyPage partitions verses along page boundary marks
	StrategyPage Strategy = "page"
	// StrategyCustom groups are defined externally and only stored
	StrategyCustom Strategy = "custom"
)

// IsValid reports whether s is a recognized grouping strategy
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyFixed, StrategySection, StrategyPage, StrategyCustom:
		return true
	}
	return false
}

// MarkKind identifies the kind of structural boundary mark a strategy reads
type MarkKind string

const (
	MarkSection MarkKind = "section"
	MarkPage    MarkKind = "page"
)

// MarkKindFor returns the boundary mark kind a structural strategy consumes.
// The second result is false for strategies that do not use marks.
func MarkKindFor(s Strategy) (MarkKind, bool) {
	switch s {
	case StrategySection:
		return MarkSection, true
	case StrategyPage:
		return MarkPage, true
	}
	return "", false
}
