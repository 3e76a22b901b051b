package domain

// Domain is the core interface that all wetwire domain implementations must satisfy.
// It provides access to the domain's metadata and required operations.
type Domain interface {
	// Name returns the domain identifier (e.g., "mixin")
	Name() string

	// Version returns the domain implementation version
	Version() string

	// Builder returns the domain's Builder implementation
	Builder() Builder

	// Linter returns the domain's Linter implementation
	Linter() Linter

	// Initializer returns the domain's Initializer implementation
	Initializer() Initializer

	// Validator returns the domain's Validator implementation
	Validator() Validator
}

// ImporterDomain is an optional interface for domains that support importing
// external type information.
type ImporterDomain interface {
	Domain
	Importer() Importer
}

// ListerDomain is an optional interface for domains that support listing
// resolved resources.
type ListerDomain interface {
	Domain
	Lister() Lister
}

// GrapherDomain is an optional interface for domains that support visualizing
// resource relationships.
type GrapherDomain interface {
	Domain
	Grapher() Grapher
}

// WatcherDomain is an optional interface for domains that rebuild when their
// inputs change.
type WatcherDomain interface {
	Domain
	Watcher() Watcher
}

// Builder builds the domain output from a declaration.
type Builder interface {
	Build(ctx *Context, path string, opts BuildOpts) (*Result, error)
}

// BuildOpts contains options for the Build operation.
type BuildOpts struct {
	// Format specifies the output format (e.g., "json", "yaml")
	Format string

	// Output specifies the output path for the generated plan
	Output string

	// DryRun returns content without writing files
	DryRun bool

	// TieBreak overrides the configured tie-break strategy
	TieBreak string
}

// Linter checks declarations according to domain-specific rules.
type Linter interface {
	Lint(ctx *Context, path string, opts LintOpts) (*Result, error)
}

// LintOpts contains options for the Lint operation.
type LintOpts struct {
	// Format specifies the output format (e.g., "text", "json")
	Format string

	// Fix automatically fixes fixable issues
	Fix bool

	// Disable specifies rules to disable
	Disable []string
}

// Initializer creates a new domain project with an example declaration.
type Initializer interface {
	Init(ctx *Context, path string, opts InitOpts) (*Result, error)
}

// InitOpts contains options for the Init operation.
type InitOpts struct {
	// Name is the project name
	Name string

	// Path is the output directory (defaults to current directory)
	Path string
}

// Validator checks that a declaration can be planned.
type Validator interface {
	Validate(ctx *Context, path string, opts ValidateOpts) (*Result, error)
}

// ValidateOpts contains options for the Validate operation.
type ValidateOpts struct {
	// Strict also fails on lint warnings
	Strict bool
}

// Importer imports external type information into the domain.
type Importer interface {
	Import(ctx *Context, source string, opts ImportOpts) (*Result, error)
}

// ImportOpts contains options for the Import operation.
type ImportOpts struct {
	// Target is the declaration document the imported types are written to
	Target string

	// Recursive also imports from subdirectories
	Recursive bool
}

// Lister lists domain resources.
type Lister interface {
	List(ctx *Context, path string, opts ListOpts) (*Result, error)
}

// ListOpts contains options for the List operation.
type ListOpts struct {
	// Format specifies the output format (e.g., "text", "json")
	Format string

	// Type selects what to list (e.g., "order", "bindings")
	Type string
}

// Grapher visualizes relationships between domain resources.
type Grapher interface {
	Graph(ctx *Context, path string, opts GraphOpts) (*Result, error)
}

// GraphOpts contains options for the Graph operation.
type GraphOpts struct {
	// Format specifies the output format (e.g., "dot", "mermaid")
	Format string
}

// Watcher rebuilds whenever its inputs change, until the context is done.
type Watcher interface {
	Watch(ctx *Context, path string, opts WatchOpts) (*Result, error)
}

// WatchOpts contains options for the Watch operation.
type WatchOpts struct {
	// Build holds the options of every rebuild
	Build BuildOpts

	// OnResult receives the result of the initial build and of every rebuild
	OnResult func(*Result)
}
