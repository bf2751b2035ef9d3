package database

// Collection names.
const (
	sessionsCollection    = "sessions"
	postLogsCollection    = "post_logs"
	userActionsCollection = "user_actions"
	usersCollection       = "users"
)
