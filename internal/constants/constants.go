package constants

const (
	// Context keys shared between middleware and handlers
	ContextKeyUserID      = "user_id"
	ContextKeyUser        = "user"
	ContextKeyProjectID   = "project_id"
	ContextKeyProjectRole = "project_role"
	ContextKeyTask        = "task"

	// Cookies
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	// Credentials
	MinPasswordLength = 8
	// bcrypt only accepts up to 72 bytes
	MaxPasswordLength = 72
	MinUsernameLength = 3

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 10000

	// AI task generation
	MaxAIGeneratedTasks = 20

	// API prefix
	APIPrefix = "/api/v1"
)
