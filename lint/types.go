// Package lint checks declaration documents for mistakes the planner would
// reject or silently ignore.
package lint

// Severity indicates the severity level of a lint issue.
type Severity int

const (
	// SeverityError marks a declaration the planner rejects.
	SeverityError Severity = iota
	// SeverityWarning marks a declaration that plans but is probably wrong.
	SeverityWarning
	// SeverityInfo marks redundant content.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Issue is one finding of a rule.
type Issue struct {
	// Rule is the ID of the rule that found this issue.
	Rule string
	// Message describes the issue.
	Message string
	// File is the document the issue was found in.
	File string
	// Path locates the offending entry, e.g. "mixins[1].requires[0]".
	Path string
	// Severity indicates how serious the issue is.
	Severity Severity
	// Suggestion provides a recommended fix for the issue.
	Suggestion string
	// Fixable indicates whether this issue can be automatically fixed.
	Fixable bool
}

// Config controls linting behavior.
type Config struct {
	// DisabledRules is a list of rule IDs to skip.
	DisabledRules []string
	// MinSeverity is the least severe level reported.
	MinSeverity Severity
}

// IsRuleDisabled returns true if the given rule ID is disabled.
func (c *Config) IsRuleDisabled(ruleID string) bool {
	for _, id := range c.DisabledRules {
		if id == ruleID {
			return true
		}
	}
	return false
}

// ShouldReport returns true if the issue should be reported based on config.
func (c *Config) ShouldReport(issue Issue) bool {
	if c.IsRuleDisabled(issue.Rule) {
		return false
	}
	// Error=0 is the most severe
	return issue.Severity <= c.MinSeverity
}
