package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string   `envconfig:"PORT" default:"8080"`
	Environment        string   `envconfig:"ENV" default:"development"`
	LogLevel           string   `envconfig:"LOG_LEVEL"`
	APIBaseURL         string   `envconfig:"API_BASE_URL" default:"http://localhost:8080/api"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,https://*.vercel.app,https://simsync.dev,https://www.simsync.dev"`
	MaxUploadMB        int64    `envconfig:"MAX_UPLOAD_MB" default:"500" validate:"gt=0"`

	// Document store
	DocumentStore      string `envconfig:"DOCUMENT_STORE" default:"postgres" validate:"oneof=postgres mongo memory"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" validate:"required_if=DocumentStore postgres"`
	MongoURI           string `envconfig:"MONGO_URI" validate:"required_if=DocumentStore mongo"`
	MongoDatabase      string `envconfig:"MONGO_DATABASE" default:"simsync"`

	// Object store
	ObjectStore    string `envconfig:"OBJECT_STORE" default:"s3" validate:"oneof=s3 minio memory"`
	S3URL          string `envconfig:"S3_URL"`
	S3Bucket       string `envconfig:"S3_BUCKET" validate:"required_if=ObjectStore s3"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" validate:"required_if=ObjectStore minio"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"simsync-files"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`

	// Identity provider
	IdentityProvider string        `envconfig:"IDENTITY_PROVIDER" default:"jwt" validate:"oneof=jwt google"`
	IdentityKey      string        `envconfig:"IDENTITY_KEY" validate:"required_if=IdentityProvider jwt"`
	IdentityIssuer   string        `envconfig:"IDENTITY_ISSUER"`
	IdentityAudience string        `envconfig:"IDENTITY_AUDIENCE" validate:"required_if=IdentityProvider google"`
	TokenRetryDelay  time.Duration `envconfig:"TOKEN_RETRY_DELAY" default:"2s"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripePriceID       string `envconfig:"STRIPE_PRICE_ID"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
