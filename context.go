package resolver

// ResolveContext accumulates the observations made during one Resolve
// call: every file found to exist (so a caller can invalidate a cache
// of its own when one of them changes) and every path that was
// probed but turned out missing (so a caller can invalidate when a
// file is later created at one of those paths). It is stack-local to
// a single resolve and is never shared between concurrent calls.
type ResolveContext struct {
	fileDeps     []string
	fileDepSeen  map[string]bool
	missingDeps  []string
	missingSeen  map[string]bool
	depth        int

	// suppressFullySpecified holds the per-call override of
	// ResolveOptions.FullySpecified: internal algorithms temporarily set
	// this while following an alias, a package-self lookup, an extension
	// alias, or a package subpath descent, so that step runs as if
	// FullySpecified were off regardless of the caller's setting.
	suppressFullySpecified bool

	// aliasInProgress tracks alias targets currently being resolved on
	// this call stack, so an alias that maps back to itself (directly
	// or through a cycle) is caught instead of recursing forever.
	aliasInProgress map[string]bool
}

func newResolveContext() *ResolveContext {
	return &ResolveContext{
		aliasInProgress: make(map[string]bool),
		fileDepSeen:     make(map[string]bool),
		missingSeen:     make(map[string]bool),
	}
}

func (c *ResolveContext) sawFile(path string) {
	if c.fileDepSeen[path] {
		return
	}
	c.fileDepSeen[path] = true
	c.fileDeps = append(c.fileDeps, path)
}

func (c *ResolveContext) sawMissing(path string) {
	if c.missingSeen[path] {
		return
	}
	c.missingSeen[path] = true
	c.missingDeps = append(c.missingDeps, path)
}

// withSuppressedFullySpecified temporarily suppresses FullySpecified
// for the duration of fn, restoring the previous state afterward — the
// pattern internal callers use around alias/package-self/extension-
// alias/subpath descent per spec.md §4.4's "fully-specified mode".
func (c *ResolveContext) withSuppressedFullySpecified(fn func() (*Resolution, error)) (*Resolution, error) {
	prev := c.suppressFullySpecified
	c.suppressFullySpecified = true
	defer func() { c.suppressFullySpecified = prev }()
	return fn()
}

// FileDependencies lists every file found to exist while producing
// this result.
func (c *ResolveContext) FileDependencies() []string { return c.fileDeps }

// MissingDependencies lists every path probed but not found.
func (c *ResolveContext) MissingDependencies() []string { return c.missingDeps }

const maxResolveDepth = 128
