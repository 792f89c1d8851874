// Package promotion is the state promotion policy engine. Given a
// workflow state and its surrounding session context it decides whether
// the state is worth promoting, which lifecycle strategy applies, which
// backend should hold it and for how long. All functions are pure.
package promotion

import (
	"encoding/json"
	"time"
)

// Complexity classes of a state tree.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Size classes of the serialized state.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Importance levels, read from the state's tags.
const (
	ImportanceLow      = "low"
	ImportanceNormal   = "normal"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

// Lifecycle strategies.
const (
	StrategyEphemeral = "ephemeral"
	StrategySession   = "session"
	StrategyDurable   = "durable"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendCache    = "cache"
	BackendDocument = "document"
)

// Classification thresholds.
const (
	complexDepth   = 4
	complexNodes   = 200
	moderateDepth  = 2
	moderateNodes  = 20
	smallSizeBytes = 1 << 10
	largeSizeBytes = 256 << 10
)

// Base TTLs per strategy; importance scales them up.
const (
	ttlEphemeral = 5 * time.Minute
	ttlSession   = 1 * time.Hour
	ttlDurable   = 24 * time.Hour
)

// Decision is the full policy verdict for one state.
type Decision struct {
	Promote    bool          `json:"promote"`
	Strategy   string        `json:"strategy"`
	Backend    string        `json:"backend"`
	Complexity string        `json:"complexity"`
	SizeClass  string        `json:"size_class"`
	Importance string        `json:"importance"`
	SizeBytes  int64         `json:"size_bytes"`
	TTL        time.Duration `json:"ttl"`
}

// AnalyzeComplexity classifies a state tree by nesting depth and node
// count.
func AnalyzeComplexity(state map[string]any) string {
	depth, nodes := measure(state, 0)
	switch {
	case depth > complexDepth || nodes > complexNodes:
		return ComplexityComplex
	case depth > moderateDepth || nodes > moderateNodes:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

func measure(v any, depth int) (maxDepth, nodes int) {
	maxDepth = depth
	nodes = 1
	switch t := v.(type) {
	case map[string]any:
		for _, child := range t {
			d, n := measure(child, depth+1)
			if d > maxDepth {
				maxDepth = d
			}
			nodes += n
		}
	case []any:
		for _, child := range t {
			d, n := measure(child, depth+1)
			if d > maxDepth {
				maxDepth = d
			}
			nodes += n
		}
	}
	return maxDepth, nodes
}

// EstimateSize returns the serialized byte size of the state. States
// that fail to marshal count as zero bytes; the sanitizer upstream makes
// that unreachable in practice.
func EstimateSize(state map[string]any) int64 {
	raw, err := json.Marshal(state)
	if err != nil {
		return 0
	}
	return int64(len(raw))
}

// ClassifySize buckets a byte size.
func ClassifySize(sizeBytes int64) string {
	switch {
	case sizeBytes >= largeSizeBytes:
		return SizeLarge
	case sizeBytes >= smallSizeBytes:
		return SizeMedium
	default:
		return SizeSmall
	}
}

// ClassifyImportance reads the importance tag from the state. Unknown
// or missing tags are normal importance.
func ClassifyImportance(state map[string]any) string {
	tag, _ := state["importance"].(string)
	switch tag {
	case ImportanceLow, ImportanceHigh, ImportanceCritical:
		return tag
	default:
		return ImportanceNormal
	}
}

// DetermineStrategy picks the lifecycle strategy from the
// classification triple.
func DetermineStrategy(complexity, sizeClass, importance string) string {
	switch {
	case importance == ImportanceCritical:
		return StrategyDurable
	case importance == ImportanceHigh:
		return StrategyDurable
	case complexity == ComplexityComplex:
		return StrategyDurable
	case sizeClass == SizeLarge:
		return StrategyDurable
	case complexity == ComplexityModerate || sizeClass == SizeMedium || importance == ImportanceNormal:
		return StrategySession
	default:
		return StrategyEphemeral
	}
}

// DetermineBackend routes a strategy to a storage backend. Durable
// states land in the document store when they are large, complex or
// critical; otherwise the cache holds them.
func DetermineBackend(strategy, complexity, sizeClass, importance string) string {
	switch strategy {
	case StrategyEphemeral:
		return BackendMemory
	case StrategySession:
		return BackendCache
	default:
		if sizeClass == SizeLarge || complexity == ComplexityComplex || importance == ImportanceCritical {
			return BackendDocument
		}
		return BackendCache
	}
}

// DetermineTTL computes retention from strategy and importance.
func DetermineTTL(strategy, importance string) time.Duration {
	var base time.Duration
	switch strategy {
	case StrategyDurable:
		base = ttlDurable
	case StrategySession:
		base = ttlSession
	default:
		base = ttlEphemeral
	}
	switch importance {
	case ImportanceCritical:
		return base * 4
	case ImportanceHigh:
		return base * 2
	default:
		return base
	}
}

// ShouldPromote gates promotion. An explicit promote flag in the state
// always wins; otherwise ephemeral states are only promoted when the
// session is ending.
func ShouldPromote(state map[string]any, sessionContext map[string]any, strategy string) bool {
	if flag, ok := state["promote"].(bool); ok {
		return flag
	}
	if strategy != StrategyEphemeral {
		return true
	}
	ending, _ := sessionContext["session_ending"].(bool)
	return ending
}

// Evaluate runs the whole policy pipeline over one state.
func Evaluate(state map[string]any, sessionContext map[string]any) Decision {
	complexity := AnalyzeComplexity(state)
	sizeBytes := EstimateSize(state)
	sizeClass := ClassifySize(sizeBytes)
	importance := ClassifyImportance(state)
	strategy := DetermineStrategy(complexity, sizeClass, importance)
	backend := DetermineBackend(strategy, complexity, sizeClass, importance)
	return Decision{
		Promote:    ShouldPromote(state, sessionContext, strategy),
		Strategy:   strategy,
		Backend:    backend,
		Complexity: complexity,
		SizeClass:  sizeClass,
		Importance: importance,
		SizeBytes:  sizeBytes,
		TTL:        DetermineTTL(strategy, importance),
	}
}
