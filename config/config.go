package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// JWTSecret signs editor session tokens.
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	CloudinaryCloudName    string `env:"CLOUDINARY_CLOUD_NAME" envDefault:"djcgld75r"`
	CloudinaryUploadPreset string `env:"CLOUDINARY_UPLOAD_PRESET" envDefault:"odoooo"`
	CloudinaryUploadPrefix string `env:"CLOUDINARY_UPLOAD_PREFIX"`
	CloudinaryFolder       string `env:"CLOUDINARY_FOLDER"`

	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDEmail      string `env:"VAPID_EMAIL" envDefault:"mailto:admin@skillswap.local"`

	AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173,http://127.0.0.1:5173"`

	FeatureRotationInterval time.Duration `env:"FEATURE_ROTATION_INTERVAL" envDefault:"3s"`

	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

func (c Config) Release() bool { return c.GinMode == "release" }

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
