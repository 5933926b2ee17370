package auth

// PolicyKind selects the access rule attached to a route.
type PolicyKind int

const (
	// PolicyPublic allows every request, authenticated or not.
	PolicyPublic PolicyKind = iota

	// PolicyRoleRequired allows authenticated principals holding the role.
	PolicyRoleRequired

	// PolicySelfOrRole allows the owner of the addressed resource, or any
	// authenticated principal holding the role.
	PolicySelfOrRole
)

// RoutePolicy is the static access rule of one endpoint. The table of
// policies is plain data configured at startup and immutable afterwards,
// so every route's rule is inspectable in one place.
type RoutePolicy struct {
	Kind PolicyKind
	Role Role
}

// Public returns the always-allow policy.
func Public() RoutePolicy {
	return RoutePolicy{Kind: PolicyPublic}
}

// RequireRole returns a policy allowing only principals with the role.
func RequireRole(role Role) RoutePolicy {
	return RoutePolicy{Kind: PolicyRoleRequired, Role: role}
}

// SelfOrRole returns a policy allowing the resource owner or principals
// with the role.
func SelfOrRole(role Role) RoutePolicy {
	return RoutePolicy{Kind: PolicySelfOrRole, Role: role}
}

// Decide evaluates a route policy against the request identity. It is a
// pure function: nil means allow; otherwise the error is
// ErrUnauthenticated (no identity) or ErrForbidden (identity without
// privilege). Any combination not explicitly allowed is denied.
func Decide(id *Identity, policy RoutePolicy, ownerID int64) error {
	if policy.Kind == PolicyPublic {
		return nil
	}

	if id == nil {
		return ErrUnauthenticated
	}

	switch policy.Kind {
	case PolicyRoleRequired:
		if id.HasRole(policy.Role) {
			return nil
		}
	case PolicySelfOrRole:
		if id.PrincipalID == ownerID || id.HasRole(policy.Role) {
			return nil
		}
	}

	return ErrForbidden
}
