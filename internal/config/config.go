package config

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                string
	LogLevel           slog.Level
	MongoURI           string
	MongoDB            string
	ServerAddr         string
	FrontendOrigins    []string
	TrustedProxies     []string
	RateLimitRequests  int
	RateLimitWindowSec int
	RedisURL           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTLSeconds    int
	UploadDir          string
	UploadURLPrefix    string
	MaxFileSize        int64
	CropWidth          int
	CropHeight         int
	JPEGQuality        int
	MaxInputPixels     int64
	BrevoAPIKey        string
	BrevoSenderEmail   string
	BrevoSenderName    string
	BrevoSandbox       bool
	NotifyEmail        string
	Timezone           *time.Location
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("TZ", "UTC"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", getEnv("MONGODB_URI", "mongodb://localhost:27017/real-estate"))
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "real-estate"
	}

	serverAddr := getEnv("SERVER_ADDR", "")
	if serverAddr == "" {
		serverAddr = ":" + getEnv("PORT", "5000")
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
		LogLevel:           parseLevel(getEnv("LOG_LEVEL", "info")),
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		ServerAddr:         serverAddr,
		FrontendOrigins:    splitList(getEnv("FRONTEND_ORIGIN", getEnv("FRONTEND_URL", "http://localhost:8000"))),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 15*60),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 60),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		UploadURLPrefix:    getEnv("UPLOAD_URL_PREFIX", "/uploads"),
		MaxFileSize:        getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		CropWidth:          getEnvInt("CROP_WIDTH", 450),
		CropHeight:         getEnvInt("CROP_HEIGHT", 350),
		JPEGQuality:        getEnvInt("JPEG_QUALITY", 80),
		MaxInputPixels:     getEnvInt64("MAX_INPUT_PIXELS", 268402689),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:   getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:    getEnv("BREVO_SENDER_NAME", "Real Estate"),
		BrevoSandbox:       getEnv("BREVO_SANDBOX", "false") == "true",
		NotifyEmail:        getEnv("NOTIFY_EMAIL", ""),
		Timezone:           loc,
	}

	return cfg, nil
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
