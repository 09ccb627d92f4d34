package resolver

// PnPResult is the outcome of asking a PnPResolver to resolve a
// specifier. A PnPResolver that isn't managing the given directory at
// all should report Handled: false so the normal node_modules walk
// runs instead.
type PnPResult struct {
	Handled bool
	AbsPath string
	Err     error
}

// PnPResolver is the narrow collaborator interface for Yarn
// Plug'n'Play-style resolution: given a bare specifier and the
// directory the import appears in, it either resolves the specifier
// through a PnP manifest or reports that it doesn't apply here. This
// package never parses a ".pnp.cjs" manifest itself; a host embedding
// the resolver in a Yarn PnP project supplies its own implementation.
type PnPResolver interface {
	Resolve(specifier string, fromDir string) PnPResult
}

// NoopPnPResolver always reports that PnP doesn't apply, which is
// correct for every project that isn't using Yarn's PnP install
// strategy.
type NoopPnPResolver struct{}

func (NoopPnPResolver) Resolve(specifier string, fromDir string) PnPResult {
	return PnPResult{Handled: false}
}
