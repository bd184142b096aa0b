package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/RUDRA212003/Career-mock/app/controllers"
	"github.com/RUDRA212003/Career-mock/internal/pkg/billing"
	"github.com/RUDRA212003/Career-mock/internal/pkg/middleware"
)

// Pong is the ping endpoint response
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface lists the public v1 operations, mirroring
// public/docs/v1/openapi.yml.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	GetPackages(c *fiber.Ctx) error
	GetUserProfile(c *fiber.Ctx) error
	GetUserCredits(c *fiber.Ctx) error
}

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetPackages returns the public credit package catalog
func (s *APIServer) GetPackages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"packages": billing.Packages()})
}

// GetUserProfile returns account information for the authenticated user.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

// GetUserCredits returns the authenticated user's credit balance.
func (s *APIServer) GetUserCredits(c *fiber.Ctx) error {
	return controllers.HandleGetUserCredits(c)
}

// RegisterHandlers attaches the v1 operations to the router group.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)
	router.Get("/packages", si.GetPackages)
	router.Get("/user/profile", middleware.RequireAuth, si.GetUserProfile)
	router.Get("/user/credits", middleware.RequireAuth, si.GetUserCredits)
}
