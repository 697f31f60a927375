package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/internal/auth"
	"github.com/yassinema02/vestiaire-sub000/internal/http/middleware"
	"github.com/yassinema02/vestiaire-sub000/internal/repo"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// AuthHandler handles authentication endpoints. Login and password
// flows live in the identity provider, not here; the API only mints
// development tokens and resolves the authenticated user.
type AuthHandler struct {
	authService *auth.Service
	userRepo    *repo.UserRepository
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userRepo:    repo.NewUserRepository(db),
	}
}

// IssueDevToken mints a JWT for an email, creating the user on first
// use. Enabled only when AUTH_DEV_TOKENS=true.
func (h *AuthHandler) IssueDevToken(c echo.Context) error {
	if os.Getenv("AUTH_DEV_TOKENS") != "true" {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Not found",
		})
	}

	var req struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to look up user",
			})
		}
		user = &models.User{
			Email:    req.Email,
			Name:     req.Name,
			IsActive: true,
		}
		if err := h.userRepo.Create(user); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to create user",
			})
		}
		log.Info().Str("email", user.Email).Msg("Dev user created")
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to issue token",
		})
	}

	if err := h.userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Warn().Str("user_id", user.ID.String()).Err(err).Msg("Failed to stamp last login")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get user",
		})
	}
	return c.JSON(http.StatusOK, user)
}
