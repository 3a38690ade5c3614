package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/validator"
)

// CookieConfig controls the token cookies set on login and refresh.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	cookies     CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// Register creates a new user and sends the verification email.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusCreated,
		"User registered successfully and verification email has been sent on your email",
		gin.H{"user": dto.ToUserDTO(*user)},
	)
}

// Login authenticates a user by email or username and sets the token cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.setTokenCookies(c, result)
	userDTO := dto.ToUserDTO(*result.User)
	respond(c, http.StatusOK, "User logged in successfully", dto.AuthResponse{
		User:         &userDTO,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Logout revokes the refresh token and clears the token cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Abort(c, apierrors.Unauthorized(""))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		respondAuthError(c, err)
		return
	}

	h.clearTokenCookies(c)
	respond(c, http.StatusOK, "User logged out", gin.H{})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Abort(c, apierrors.Unauthorized(""))
		return
	}

	respond(c, http.StatusOK, "Current user fetched successfully", dto.ToUserDTO(*user))
}

// VerifyEmail consumes an email verification token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		apierrors.Abort(c, apierrors.BadRequest("Email verification token is missing"))
		return
	}

	if _, err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "Email is verified", gin.H{"is_email_verified": true})
}

// ResendEmailVerification issues a new verification token for the caller.
func (h *AuthHandler) ResendEmailVerification(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Abort(c, apierrors.Unauthorized(""))
		return
	}

	if err := h.authService.ResendEmailVerification(c.Request.Context(), userID); err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "Mail has been sent to your mail ID", gin.H{})
}

// RefreshToken exchanges the refresh token from the cookie or the body for
// a new token pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(constants.RefreshTokenCookie)
	if token == "" {
		var req dto.RefreshTokenRequest
		// A missing or unreadable body is the same as a missing token.
		_ = c.ShouldBind(&req)
		token = req.RefreshToken
	}

	if token == "" {
		apierrors.Abort(c, apierrors.Unauthorized("Unauthorized request", auth.Reason(auth.ErrTokenMissing)))
		return
	}

	result, err := h.authService.RefreshTokens(c.Request.Context(), token)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.setTokenCookies(c, result)
	respond(c, http.StatusOK, "Access token refreshed", dto.AuthResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Abort(c, apierrors.Unauthorized(""))
		return
	}

	var req dto.ChangePasswordRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "Password changed successfully", gin.H{})
}

// ForgotPassword mails a password reset link.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "Password reset mail has been sent on your mail ID", gin.H{})
}

// ResetPassword sets a new password using a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "Password reset successfully", gin.H{})
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, result *services.LoginResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.AccessTokenCookie, result.AccessToken, int(h.cookies.AccessTTL.Seconds()), "/", "", h.cookies.Secure, true)
	c.SetCookie(constants.RefreshTokenCookie, result.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), "/", "", h.cookies.Secure, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.AccessTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(constants.RefreshTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.Abort(c, apierrors.BadRequest(fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength)))
	case errors.Is(err, services.ErrPasswordTooLong):
		apierrors.Abort(c, apierrors.BadRequest(fmt.Sprintf("Password must be at most %d characters", constants.MaxPasswordLength)))
	case errors.Is(err, services.ErrUserExists):
		apierrors.Abort(c, apierrors.Conflict(err.Error()))
	case errors.Is(err, services.ErrIdentifierRequired):
		apierrors.Abort(c, apierrors.BadRequest(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Abort(c, apierrors.Unauthorized("Invalid user credentials"))
	case errors.Is(err, services.ErrIncorrectPassword):
		apierrors.Abort(c, apierrors.BadRequest("Invalid old password"))
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.Abort(c, apierrors.NotFound("User does not exist"))
	case errors.Is(err, services.ErrEmailAlreadyVerified):
		apierrors.Abort(c, apierrors.Conflict("Email is already verified"))
	case errors.Is(err, services.ErrInvalidVerification),
		errors.Is(err, services.ErrInvalidPasswordReset):
		apierrors.Abort(c, apierrors.BadRequest("Token is invalid or expired"))
	case errors.Is(err, services.ErrInvalidRefreshToken):
		apierrors.Abort(c, apierrors.Unauthorized("Invalid refresh token", auth.Reason(err)))
	default:
		apierrors.Abort(c, err)
	}
}
