package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RUDRA212003/Career-mock/internal/pkg/session"
	"github.com/RUDRA212003/Career-mock/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session once per request and exposes a
// single UserContext via Locals for all downstream handlers.
func UserContextMiddleware(c *fiber.Ctx) error {
	ctx := usercontext.UserContext{}

	store := session.GetSessionStore()
	if store != nil {
		sess, err := store.Get(c)
		if err == nil {
			if auth, ok := sess.Get(usercontext.AuthKey).(bool); ok && auth {
				ctx.IsLoggedIn = true
				if id, ok := sess.Get(usercontext.KeyUserID).(uint); ok {
					ctx.UserID = id
				}
				if name, ok := sess.Get(usercontext.KeyUsername).(string); ok {
					ctx.Username = name
				}
				if email, ok := sess.Get(usercontext.KeyUserEmail).(string); ok {
					ctx.Email = email
				}
				if role, ok := sess.Get(usercontext.KeyUserRole).(string); ok {
					ctx.Role = role
				}
				if isAdmin, ok := sess.Get(usercontext.KeyIsAdmin).(bool); ok {
					ctx.IsAdmin = isAdmin
				}
			}
		}
	}

	usercontext.SetUserContext(c, ctx)
	c.Locals(usercontext.KeyFromProtected, ctx.IsLoggedIn)
	c.Locals(usercontext.KeyIsAdmin, ctx.IsAdmin)

	return c.Next()
}
