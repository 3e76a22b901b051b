package lint

import "testing"

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityError, "error"},
		{SeverityWarning, "warning"},
		{SeverityInfo, "info"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.expected {
				t.Errorf("Severity.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConfigShouldReport(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		issue    Issue
		expected bool
	}{
		{
			name:     "error severity matches error min",
			cfg:      Config{MinSeverity: SeverityError},
			issue:    Issue{Rule: "MIX001", Severity: SeverityError},
			expected: true,
		},
		{
			name:     "info below warning min",
			cfg:      Config{MinSeverity: SeverityWarning},
			issue:    Issue{Rule: "MIX002", Severity: SeverityInfo},
			expected: false,
		},
		{
			name:     "error exceeds info min",
			cfg:      Config{MinSeverity: SeverityInfo},
			issue:    Issue{Rule: "MIX003", Severity: SeverityError},
			expected: true,
		},
		{
			name: "disabled rule not reported",
			cfg: Config{
				MinSeverity:   SeverityInfo,
				DisabledRules: []string{"MIX001"},
			},
			issue:    Issue{Rule: "MIX001", Severity: SeverityError},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ShouldReport(tt.issue); got != tt.expected {
				t.Errorf("ShouldReport() = %v, want %v", got, tt.expected)
			}
		})
	}
}
