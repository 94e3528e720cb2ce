package domain

// Access is the outcome of a role check.
type Access int

const (
	AccessGranted Access = iota
	AccessNoSession
	AccessProfileMissing
	AccessWrongRole
)

// RequireRole is the single capability check used by every guarded screen.
func RequireRole(sess *Session, profile *Profile, role Role) Access {
	if sess == nil || sess.UserID == "" {
		return AccessNoSession
	}
	if profile == nil || profile.ID != sess.UserID {
		return AccessProfileMissing
	}
	if profile.Role != role {
		return AccessWrongRole
	}
	return AccessGranted
}

// Redirect is the screen a denied caller is sent to; "" means show an error instead.
func (a Access) Redirect() string {
	switch a {
	case AccessNoSession:
		return RouteLogin
	case AccessWrongRole:
		return RouteDashboard
	}
	return ""
}

func (a Access) String() string {
	switch a {
	case AccessGranted:
		return "granted"
	case AccessNoSession:
		return "no_session"
	case AccessProfileMissing:
		return "profile_missing"
	case AccessWrongRole:
		return "wrong_role"
	}
	return "unknown"
}
