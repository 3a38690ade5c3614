package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/logger"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var (
	ErrUserExists           = errors.New("user with given email or username already exists")
	ErrIdentifierRequired   = errors.New("email or username is required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordTooLong      = errors.New("password too long")
	ErrIncorrectPassword    = errors.New("current password is incorrect")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyVerified = errors.New("email is already verified")
	ErrInvalidVerification  = errors.New("invalid or expired verification token")
	ErrInvalidPasswordReset = errors.New("invalid or expired password reset token")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToIssueToken   = errors.New("failed to issue token")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToUpdateUser   = errors.New("failed to update user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenService
	mailer   mail.Mailer
	mailCfg  config.MailConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenService, mailer mail.Mailer, mailCfg config.MailConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		mailCfg:  mailCfg,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// Register creates an unverified user and mails an email-verification link.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(input.Password) > constants.MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	verification, err := s.tokens.IssueOneTimeToken()
	if err != nil {
		return nil, ErrFailedToIssueToken
	}

	user := &models.User{
		Email:                        email,
		Username:                     username,
		FullName:                     strings.TrimSpace(input.FullName),
		PasswordHash:                 hashedPassword,
		EmailVerificationToken:       &verification.Hash,
		EmailVerificationTokenExpiry: &verification.ExpiresAt,
	}

	// The existence check above is not atomic with the insert; concurrent
	// registrations are decided by the unique indexes.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	s.sendVerificationMail(ctx, user, verification.Plain)

	return user, nil
}

// LoginInput holds the credentials for authentication. Either Email or
// Username identifies the account.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// LoginResult is an authenticated user with a fresh token pair.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))

	var (
		user *models.User
		err  error
	)
	switch {
	case email != "":
		user, err = s.userRepo.FindByEmail(ctx, email)
	case username != "":
		user, err = s.userRepo.FindByUsername(ctx, username)
	default:
		return nil, ErrIdentifierRequired
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, input.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the user's refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.userRepo.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// RefreshTokens exchanges a valid, current refresh token for a new pair. The
// presented token is invalidated by the rotation.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*LoginResult, error) {
	_, user, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		if auth.IsTokenError(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := auth.CheckPassword(user.PasswordHash, oldPassword); err != nil {
		return ErrIncorrectPassword
	}

	return s.setPassword(ctx, user, newPassword)
}

// VerifyEmail marks the holder of the verification token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, plainToken string) (*models.User, error) {
	user, err := s.userRepo.FindByEmailVerificationToken(ctx, auth.HashOneTimeToken(plainToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerification
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.tokens.VerifyOneTimeToken(plainToken, user.EmailVerificationToken, user.EmailVerificationTokenExpiry) {
		return nil, ErrInvalidVerification
	}

	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationTokenExpiry = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToUpdateUser, err)
	}

	return user, nil
}

// ResendEmailVerification issues a new verification token, replacing any
// earlier one, and mails it.
func (s *AuthService) ResendEmailVerification(ctx context.Context, userID uint64) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}

	verification, err := s.tokens.IssueOneTimeToken()
	if err != nil {
		return ErrFailedToIssueToken
	}

	user.EmailVerificationToken = &verification.Hash
	user.EmailVerificationTokenExpiry = &verification.ExpiresAt
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToUpdateUser, err)
	}

	s.sendVerificationMail(ctx, user, verification.Plain)
	return nil
}

// ForgotPassword issues a password reset token and mails the reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	reset, err := s.tokens.IssueOneTimeToken()
	if err != nil {
		return ErrFailedToIssueToken
	}

	user.ForgotPasswordToken = &reset.Hash
	user.ForgotPasswordTokenExpiry = &reset.ExpiresAt
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToUpdateUser, err)
	}

	link := strings.TrimRight(s.mailCfg.ResetRedirectURL, "/") + "/" + reset.Plain
	s.send(ctx, user.Email, "Password reset request", mail.PasswordResetContent(user.Username, link))
	return nil
}

// ResetPassword sets a new password for the holder of the reset token. The
// token is consumed and the stored refresh token revoked.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken, newPassword string) error {
	user, err := s.userRepo.FindByForgotPasswordToken(ctx, auth.HashOneTimeToken(plainToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidPasswordReset
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if !s.tokens.VerifyOneTimeToken(plainToken, user.ForgotPasswordToken, user.ForgotPasswordTokenExpiry) {
		return ErrInvalidPasswordReset
	}

	user.ForgotPasswordToken = nil
	user.ForgotPasswordTokenExpiry = nil
	user.RefreshToken = nil
	return s.setPassword(ctx, user, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordLength {
		return ErrPasswordTooLong
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToUpdateUser, err)
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResult, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, user *models.User, plainToken string) {
	link := fmt.Sprintf("%s%s/auth/verify-email/%s",
		strings.TrimRight(s.mailCfg.PublicBaseURL, "/"),
		constants.APIPrefix,
		plainToken,
	)
	s.send(ctx, user.Email, "Please verify your email", mail.VerificationContent(user.Username, link))
}

// send delivers a mail and only logs failures; the issued token stays valid.
func (s *AuthService) send(ctx context.Context, to, subject string, content mail.Content) {
	msg, err := mail.Render(s.mailCfg.ProductName, to, subject, content)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to send email",
			"to", to,
			"subject", subject,
			"error", err,
		)
	}
}
