package domain

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Run builds the wetwire-<name> command tree for d. The returned root can be
// extended with extra flags or commands before Execute.
func Run(d Domain) *cobra.Command {
	root := &cobra.Command{
		Use:          "wetwire-" + d.Name(),
		Version:      d.Version(),
		Short:        fmt.Sprintf("wetwire %s domain CLI", d.Name()),
		SilenceUsage: true,
	}

	formats := []string{FormatText, FormatJSON, FormatYAML, FormatRaw}
	root.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	root.PersistentFlags().StringP("format", "f", FormatText,
		fmt.Sprintf("Output format (%s)", strings.Join(formats, ", ")))

	root.AddCommand(
		generateBuildCmd(d.Builder()),
		generateLintCmd(d.Linter()),
		generateInitCmd(d.Initializer()),
		generateValidateCmd(d.Validator()),
	)

	if imp, ok := d.(ImporterDomain); ok {
		root.AddCommand(generateImportCmd(imp.Importer()))
	}
	if lst, ok := d.(ListerDomain); ok {
		root.AddCommand(generateListCmd(lst.Lister()))
	}
	if gph, ok := d.(GrapherDomain); ok {
		root.AddCommand(generateGraphCmd(gph.Grapher()))
	}
	if w, ok := d.(WatcherDomain); ok {
		root.AddCommand(generateWatchCmd(w.Watcher()))
	}

	return root
}
