package handlers

import (
	"errors"

	"nexora/internal/auth"
	"nexora/internal/catalog"
	"nexora/internal/middleware"
	"nexora/internal/repositories"
	"nexora/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    catalog.NewValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/google", h.HandleGoogleSignIn)
	authRoutes.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// GoogleSignInRequest represents the request body for Google sign-in.
type GoogleSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// HandleGoogleSignIn exchanges a Google ID token for a session token.
func (h *AuthHandler) HandleGoogleSignIn(c *fiber.Ctx) error {
	var req GoogleSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, user, err := h.authService.SignInWithGoogle(c.UserContext(), req.IDToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidIdentity) {
			zap.L().Info("google sign-in rejected", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Authentication failed",
				"details": err.Error(),
			})
		}
		zap.L().Error("google sign-in failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Could not sign in",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// HandleMe returns the signed-in user and whether they may use the admin area.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)
	user, err := h.authService.CurrentUser(c.UserContext(), userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User no longer exists",
			})
		}
		zap.L().Error("failed to load current user", zap.String("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Could not load user",
			"details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"user":  user,
		"admin": h.authService.IsAdmin(user.Email),
	})
}
