package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeySession   CtxKey = "Session"
	KeyProfile   CtxKey = "Profile"
)

// Screen routes returned in redirect responses.
const (
	RouteLogin     = "/auth/login"
	RouteSignup    = "/auth/signup"
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
)
