package contextkeys

// contextKey is unexported to avoid collisions with other packages' keys.
type contextKey string

// DBContextKey stores the request-scoped *gorm.DB (pool or test transaction).
const DBContextKey = contextKey("db")
