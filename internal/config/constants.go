package config

// Default paths and limits
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookshelf.db"

	// MinBcryptCost keeps configured hashing from dropping below a safe floor in production
	MinBcryptCost = 10
)
