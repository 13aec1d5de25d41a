package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Strings for identifiers and secrets, ints
// for durations and costs, slices for list-valued settings.
type Config struct {
	Env           string   // application environment (e.g. "dev", "prod")
	Port          string   // HTTP port to listen on
	DBUser        string   // database username
	DBPass        string   // database password (optional)
	DBHost        string   // database host address
	DBPort        string   // database port number
	DBName        string   // database name
	JWTSecret     string   // secret used to sign JWTs
	AccessTTLDays int      // access token time-to-live in days
	BcryptCost    int      // bcrypt cost for password hashing
	CatalogURL    string   // base URL of the remote film catalog API
	CatalogKeys   []string // ordered credential tokens for the catalog API
	AIKey         string   // key for the discussion-prompt API
	AIURL         string   // base URL of the discussion-prompt API
	AIModel       string   // model name for discussion prompts
	MinioEndpoint string   // MinIO host:port
	MinioAccess   string   // MinIO access key
	MinioSecret   string   // MinIO secret key
	MinioBucket   string   // bucket for uploaded film images
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLDays: mustInt("ACCESS_TOKEN_TTL_DAYS"),
		BcryptCost:    mustInt("BCRYPT_COST"),
		CatalogURL:    getenv("KINOPOISK_API_URL", "https://kinopoiskapiunofficial.tech/api/v2.2"),
		CatalogKeys:   mustList("KINOPOISK_API_KEYS"),
		AIKey:         must("AI_API_KEY"),
		AIURL:         getenv("AI_API_URL", "https://openrouter.ai/api/v1"),
		AIModel:       getenv("AI_MODEL", "google/gemini-2.0-flash-lite-preview-02-05:free"),
		MinioEndpoint: must("MINIO_ENDPOINT"),
		MinioAccess:   must("MINIO_ROOT_USER"),
		MinioSecret:   must("MINIO_ROOT_PASSWORD"),
		MinioBucket:   getenv("MINIO_BUCKET", "images"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustList splits a required comma-separated variable into its non-empty
// trimmed elements.
func mustList(key string) []string {
	var out []string
	for _, p := range strings.Split(must(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		log.Fatalf("env var %s holds no usable values", key)
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
