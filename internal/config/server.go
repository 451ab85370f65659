package config

import "fmt"

// GetListenAddr returns the address the HTTP server binds to
func GetListenAddr() string {
	return fmt.Sprintf(":%d", parseEnvInt("PORT", 8080))
}

// GetDatabasePath returns the location of the SQLite user database
func GetDatabasePath() string {
	return GetEnvOrDefault("DATABASE_PATH", "database.db")
}
