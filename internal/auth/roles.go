package auth

// Authorizer checks actor role membership against the privileged set
// that gates ticket transitions.
type Authorizer struct {
	privileged map[string]struct{}
}

// NewAuthorizer builds an authorizer from the configured role IDs.
func NewAuthorizer(roleIDs []string) *Authorizer {
	allowed := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		allowed[id] = struct{}{}
	}
	return &Authorizer{privileged: allowed}
}

// IsPrivileged reports whether any of the actor's roles is privileged.
// An empty privileged set grants nobody.
func (a *Authorizer) IsPrivileged(roleIDs []string) bool {
	if a == nil {
		return false
	}
	for _, id := range roleIDs {
		if _, ok := a.privileged[id]; ok {
			return true
		}
	}
	return false
}
