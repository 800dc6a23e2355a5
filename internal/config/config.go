package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DBDriver    string
	MySQLDSN    string
	SQLitePath  string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string

	UploadDir      string
	PublicPrefix   string
	MaxUploadSize  string
	PasswordScheme string
	AuthEnforce    bool
	CORSOrigins    []string
	ResetDB        bool
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is applied first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/flyers?charset=utf8mb4&parseTime=True&loc=UTC"),
		SQLitePath:  getEnv("SQLITE_PATH", "flyers.db"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		UploadDir:      getEnv("UPLOAD_DIR", "wwwroot/uploads"),
		PublicPrefix:   getEnv("PUBLIC_PREFIX", "/uploads"),
		MaxUploadSize:  getEnv("MAX_UPLOAD_SIZE", "20M"),
		PasswordScheme: getEnv("PASSWORD_SCHEME", "bcrypt"),
		AuthEnforce:    getEnvBool("AUTH_ENFORCE", false),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
		ResetDB:        getEnvBool("RESET_DB", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
