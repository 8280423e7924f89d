package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables

	"github.com/joho/godotenv" // godotenv fills the environment from a .env file in development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMigrate      bool   // apply the embedded schema on startup
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	PageSize       int    // records per page on paginated listings
	AdminUsername  string // bootstrap admin created on startup when set
	AdminPassword  string // password of the bootstrap admin
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present; real environment variables win over it.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return Config{
		Env:            getenv("APP_ENV", "dev"),             // environment (dev/test/prod)
		Port:           getenv("APP_PORT", "8000"),           // port to bind the HTTP server
		DBUser:         must("DB_USER"),                      // database user
		DBPass:         os.Getenv("DB_PASS"),                 // database password (empty allowed)
		DBHost:         must("DB_HOST"),                      // database host
		DBPort:         getenv("DB_PORT", "3306"),            // database port
		DBName:         must("DB_NAME"),                      // database name
		DBMigrate:      envBool("DB_MIGRATE", true),          // run schema.sql at startup
		JWTSecret:      must("JWT_SECRET"),                   // secret used for signing JWTs
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),   // TTL for access tokens in minutes
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 14), // TTL for refresh tokens in days
		BcryptCost:     envInt("BCRYPT_COST", 12),            // bcrypt cost factor
		PageSize:       envInt("PAGE_SIZE", 10),              // records on one listing page
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),          // optional bootstrap admin
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
