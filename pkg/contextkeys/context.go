package contextkeys

type contextKey string

const (
	DBContextKey = contextKey("db")

	// Ключи gin.Context, которые выставляет AuthMiddleware
	UserIDKey = "userID"
	RoleKey   = "role"
)
