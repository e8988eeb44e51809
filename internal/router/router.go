// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fridge-share/internal/handler"
	"github.com/iliyamo/fridge-share/internal/middleware"
)

// Handlers groups every handler the API exposes.
type Handlers struct {
	Auth          *handler.AuthHandler
	Fridges       *handler.FridgeHandler
	Invites       *handler.InviteHandler
	Items         *handler.ItemHandler
	Notifications *handler.NotificationHandler
}

// RegisterRoutes registers routes that do not require authentication.
// Health and metrics are mounted by the caller.
func RegisterRoutes(e *echo.Echo, h Handlers, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.GET("/check-email/:email", h.Auth.CheckEmail)
	g.POST("/signup", h.Auth.Signup)
	g.GET("/verify-email", h.Auth.VerifyEmail)
	g.POST("/resend-verification", h.Auth.ResendVerification)
	g.POST("/login", h.Auth.Login)
	g.POST("/google/signup", h.Auth.GoogleSignup)
	g.POST("/google/login", h.Auth.GoogleLogin)
	// refresh rotates the refresh token; refresh-access does not
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/refresh-access", h.Auth.RefreshAccess)
	g.POST("/logout", h.Auth.Logout)
	g.POST("/password/forgot", h.Auth.ForgotPassword)
	g.POST("/password/reset", h.Auth.ResetPassword)

	// invite pages render before the invitee signs in
	e.GET("/v1/invites/:token", h.Invites.Preview, limit)
	e.POST("/v1/invites/account/accept", h.Invites.AcceptAccount, limit)
}

// RegisterProtected registers the JWT-protected API under /v1.
func RegisterProtected(e *echo.Echo, h Handlers, jwtSecret string, limit echo.MiddlewareFunc) {
	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	v1.GET("/me", h.Auth.Me)

	v1.POST("/fridges/ensure", h.Fridges.Ensure)
	v1.GET("/fridges", h.Fridges.List)
	v1.PUT("/fridges/:id/name", h.Fridges.Rename)
	v1.DELETE("/fridges/:id/membership", h.Fridges.Leave)

	v1.POST("/invites", h.Invites.CreateFridge, limit)
	v1.POST("/invites/account", h.Invites.CreateAccount, limit)
	v1.POST("/invites/accept", h.Invites.Accept)

	v1.GET("/fridges/:id/items", h.Items.List)
	v1.POST("/fridges/:id/items", h.Items.Create)
	v1.DELETE("/fridges/:id/items", h.Items.Clear)
	v1.PATCH("/items/:id", h.Items.Update)
	v1.DELETE("/items/:id", h.Items.Delete)

	v1.GET("/fridges/:id/categories", h.Items.ListCategories)
	v1.POST("/fridges/:id/categories", h.Items.CreateCategory)
	v1.PUT("/categories/:id", h.Items.UpdateCategory)
	v1.DELETE("/categories/:id", h.Items.DeleteCategory)

	v1.GET("/notifications", h.Notifications.List)
	v1.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	v1.PATCH("/notifications/read-all", h.Notifications.MarkAllRead)
	v1.PATCH("/notifications/:id/read", h.Notifications.MarkRead)
	v1.DELETE("/notifications/:id", h.Notifications.Delete)
	v1.POST("/notifications/check-expiring", h.Notifications.CheckExpiring)
}
