package flows

// AuthorizeFailureKind classifies role guard failures.
type AuthorizeFailureKind int

const (
	AuthorizeFailureNone AuthorizeFailureKind = iota
	AuthorizeFailureUnauthenticated
	AuthorizeFailureForbidden
)

// RunAuthorize checks role against allowed. An empty allow-list admits any
// authenticated role; authenticated is false when the gate did not run.
func RunAuthorize[R comparable](authenticated bool, role R, allowed []R) AuthorizeFailureKind {
	if !authenticated {
		return AuthorizeFailureUnauthenticated
	}
	if len(allowed) == 0 {
		return AuthorizeFailureNone
	}
	for _, r := range allowed {
		if r == role {
			return AuthorizeFailureNone
		}
	}
	return AuthorizeFailureForbidden
}
