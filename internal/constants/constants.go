package constants

const (
	// ContextKeyUserID is the key used for the authenticated user ID in both the
	// session and the gin context.
	ContextKeyUserID = "user_id"

	// ContextKeyTask holds the task loaded by RequireTaskAccess.
	ContextKeyTask = "task"

	// ContextKeyVision holds the vision plan loaded by RequireVisionAccess.
	ContextKeyVision = "vision"

	SessionCookieName = "levelup_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxAIGeneratedTasks = 20
	MaxBulkDeleteIDs    = 500
)
