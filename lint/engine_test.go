package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messyYAML = `target: Order
types:
  - id: Clock
    kind: interface
    methods:
      - name: Now
        signature: func() time.Time
mixins:
  - mixin: Audit
    requires: [Clock, any, Clock]
  - mixin: Audit
    requires: [Ledger]
  - mixin: Cache
    requires: [Cache]
complete: [Clock, Unused]
`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLintFile(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "order.yaml", messyYAML)
	rules := DefaultRegistry().All()

	t.Run("reports invalid declarations as issues", func(t *testing.T) {
		issues, err := LintFile(path, nil, rules, &Config{MinSeverity: SeverityInfo})
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"MIX001", "MIX002", "MIX003", "MIX004", "MIX006", "MIX007"},
			uniqueRules(issues))
		for _, issue := range issues {
			assert.Equal(t, path, issue.File)
		}
	})

	t.Run("filters by severity", func(t *testing.T) {
		issues, err := LintFile(path, nil, rules, &Config{MinSeverity: SeverityError})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"MIX001", "MIX003"}, uniqueRules(issues))
	})

	t.Run("respects disabled rules", func(t *testing.T) {
		cfg := &Config{MinSeverity: SeverityError, DisabledRules: []string{"MIX003"}}
		issues, err := LintFile(path, nil, rules, cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"MIX001"}, uniqueRules(issues))
	})

	t.Run("nil config reports everything", func(t *testing.T) {
		issues, err := LintFile(path, nil, rules, nil)
		require.NoError(t, err)
		assert.Len(t, uniqueRules(issues), 6)
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := LintFile(filepath.Join(t.TempDir(), "missing.yaml"), nil, rules, nil)
		assert.Error(t, err)
	})

	t.Run("returns error for malformed types", func(t *testing.T) {
		bad := writeDoc(t, t.TempDir(), "bad.yaml", "target: Order\ntypes:\n  - id: X\n    kind: enum\n")
		_, err := LintFile(bad, nil, rules, nil)
		assert.Error(t, err)
	})
}

func TestLintDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "order.yaml", messyYAML)
	writeDoc(t, dir, "clean.json", `{"target":"Invoice","mixins":[{"mixin":"Audit"}]}`)
	writeDoc(t, dir, "README.md", "# not a declaration")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}

	issues, err := LintDir(dir, nil, DefaultRegistry().All(), &Config{MinSeverity: SeverityError})
	require.NoError(t, err)
	for _, issue := range issues {
		assert.Equal(t, "order.yaml", filepath.Base(issue.File))
	}
	assert.NotEmpty(t, issues)

	_, err = LintDir(filepath.Join(dir, "missing"), nil, nil, nil)
	assert.Error(t, err)
}

func uniqueRules(issues []Issue) []string {
	seen := make(map[string]bool)
	var out []string
	for _, i := range issues {
		if !seen[i.Rule] {
			seen[i.Rule] = true
			out = append(out, i.Rule)
		}
	}
	return out
}
