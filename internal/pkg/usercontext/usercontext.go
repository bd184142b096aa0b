package usercontext

import "github.com/gofiber/fiber/v2"

const localsKey = "USER_CONTEXT"

// UserContext carries the authenticated user through a request. It is
// resolved once by the middleware so handlers never touch the session store
// directly.
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// GetUserContext returns the request's user context, or an anonymous one
// when nothing was set.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(localsKey).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

// SetUserContext stores the user context on the fiber context.
func SetUserContext(c *fiber.Ctx, ctx UserContext) {
	c.Locals(localsKey, ctx)
}

// IsLoggedIn reports whether the request carries an authenticated user.
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin reports whether the request's user has the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's id, or 0 for anonymous requests.
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetUsername returns the current user's name, or "" for anonymous requests.
func GetUsername(c *fiber.Ctx) string {
	return GetUserContext(c).Username
}
