package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyUserEmail     = "user_email"
	KeyUserRole      = "user_role"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"
)
