package authclient

import "github.com/gofiber/fiber/v2"

// FiberGuardMiddleware enforces the guard for hosts mounted on fiber
// directly, mirroring RouteGuard.Middleware.
func FiberGuardMiddleware(g *RouteGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch g.Evaluate() {
		case DecisionAllow:
			return c.Next()
		case DecisionLoading:
			return c.Status(fiber.StatusServiceUnavailable).SendString("session initializing")
		default:
			return c.Redirect(g.LoginRoute(), fiber.StatusFound)
		}
	}
}
