package capgraph

import (
	"strings"

	"github.com/lex00/wetwire-mixin-go/declare"
)

// AggregationCycleError reports an aggregator capability that contains
// itself. Path starts and ends with the repeated capability.
type AggregationCycleError struct {
	Path []declare.TypeID
}

func (e *AggregationCycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = string(p)
	}
	return "cyclic capability aggregation: " + strings.Join(parts, " -> ")
}
