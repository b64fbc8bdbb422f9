package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/proposalhub/proposalhub-api/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	WebAuthn   WebAuthnConfig
	Enrichment EnrichmentConfig
	Storage    StorageConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
	Jobs       JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// AuthConfig holds session token settings. Tokens are HS256 JWTs
// issued after a completed passkey ceremony.
type AuthConfig struct {
	// SigningKey is the HMAC secret for session tokens (from vault in production)
	SigningKey string
	// TokenTTL is the session token lifetime in seconds
	TokenTTL int
	// CookieName is the session cookie name
	CookieName string
	// CookieSecure marks the session cookie Secure (enable behind HTTPS)
	CookieSecure bool
}

// TokenTTLDuration returns the token lifetime as duration
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Second
}

// WebAuthnConfig holds relying party settings for passkey ceremonies
type WebAuthnConfig struct {
	// RPID is the relying party identifier (the site's effective domain)
	RPID string
	// RPDisplayName is shown in authenticator prompts
	RPDisplayName string
	// RPOrigins lists the origins allowed to complete ceremonies
	RPOrigins []string
	// SessionTTL is how long a started ceremony stays valid (seconds)
	SessionTTL int
}

// SessionTTLDuration returns the ceremony session lifetime as duration
func (w *WebAuthnConfig) SessionTTLDuration() time.Duration {
	return time.Duration(w.SessionTTL) * time.Second
}

// EnrichmentConfig holds credentials and tuning for the AI enrichment
// providers. API keys come from vault in production.
type EnrichmentConfig struct {
	// OpenAIAPIKey authenticates against the OpenAI chat API
	OpenAIAPIKey string
	// OpenAIBaseURL allows pointing at a compatible endpoint
	OpenAIBaseURL string
	// OpenAIModels is the ordered fallback chain of model names
	OpenAIModels []string
	// PerplexityAPIKey authenticates against the Perplexity API
	PerplexityAPIKey string
	// PerplexityModel is the Perplexity model used for research prompts
	PerplexityModel string
	// ClearbitLogoBaseURL serves logo lookups by domain
	ClearbitLogoBaseURL string
	// GoogleSearchAPIKey and GoogleSearchCX configure the custom search fallback
	GoogleSearchAPIKey string
	GoogleSearchCX     string
	// LinkedInAccessToken authenticates organization lookups against the LinkedIn API
	LinkedInAccessToken string
	// AttemptTimeout bounds each provider attempt (seconds)
	AttemptTimeout int
	// ScrapeEnabled controls whether the headless browser profile scraper runs
	ScrapeEnabled bool
}

// AttemptTimeoutDuration returns the per-attempt timeout as duration
func (e *EnrichmentConfig) AttemptTimeoutDuration() time.Duration {
	return time.Duration(e.AttemptTimeout) * time.Second
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	// EnableHSTS enables HTTP Strict Transport Security header
	EnableHSTS bool
	// HSTSMaxAge is the max age for HSTS in seconds
	HSTSMaxAge int
	// HSTSIncludeSubdomains includes subdomains in HSTS
	HSTSIncludeSubdomains bool
	// HSTSPreload enables HSTS preload
	HSTSPreload bool
	// ContentSecurityPolicy sets the Content-Security-Policy header
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions string
	// ContentTypeNosniff enables X-Content-Type-Options: nosniff
	ContentTypeNosniff bool
	// XSSProtection sets the X-XSS-Protection header
	XSSProtection string
	// ReferrerPolicy sets the Referrer-Policy header
	ReferrerPolicy string
	// PermissionsPolicy sets the Permissions-Policy header
	PermissionsPolicy string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting (e.g., /health)
	WhitelistPaths []string
}

// JobsConfig holds background job scheduling configuration
type JobsConfig struct {
	// Enabled enables the cron scheduler
	Enabled bool
	// SessionSweepSchedule is the cron expression for expired session cleanup
	SessionSweepSchedule string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load auth signing key from environment if not in config
	if cfg.Auth.SigningKey == "" {
		cfg.Auth.SigningKey = v.GetString("AUTH_SIGNING_KEY")
	}

	// Load enrichment API keys from environment if not in config
	if cfg.Enrichment.OpenAIAPIKey == "" {
		cfg.Enrichment.OpenAIAPIKey = v.GetString("OPENAI_API_KEY")
	}
	if cfg.Enrichment.PerplexityAPIKey == "" {
		cfg.Enrichment.PerplexityAPIKey = v.GetString("PERPLEXITY_API_KEY")
	}
	if cfg.Enrichment.GoogleSearchAPIKey == "" {
		cfg.Enrichment.GoogleSearchAPIKey = v.GetString("GOOGLE_SEARCH_API_KEY")
	}
	if cfg.Enrichment.GoogleSearchCX == "" {
		cfg.Enrichment.GoogleSearchCX = v.GetString("GOOGLE_SEARCH_CX")
	}
	if cfg.Enrichment.LinkedInAccessToken == "" {
		cfg.Enrichment.LinkedInAccessToken = v.GetString("LINKEDIN_ACCESS_TOKEN")
	}

	// Load Azure Key Vault name from environment if not in config
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
// In development (or when secrets.source = "environment"), secrets come from env vars
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	// First load basic config
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	// Validate Key Vault name is provided
	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Loading secrets from Azure Key Vault")

	// Database secrets from Key Vault
	// Host, User, Password come from vault; Port and Database name are environment-specific
	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	// SSL mode from env var (Azure PostgreSQL requires "require")
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	// Session token signing key
	if key, err := provider.GetSecretOrEnv(ctx, "auth-signing-key", "AUTH_SIGNING_KEY"); err == nil && key != "" {
		cfg.Auth.SigningKey = key
	}

	// Enrichment provider API keys
	if key, err := provider.GetSecretOrEnv(ctx, "openai-api-key", "OPENAI_API_KEY"); err == nil && key != "" {
		cfg.Enrichment.OpenAIAPIKey = key
	}
	if key, err := provider.GetSecretOrEnv(ctx, "perplexity-api-key", "PERPLEXITY_API_KEY"); err == nil && key != "" {
		cfg.Enrichment.PerplexityAPIKey = key
	}
	if key, err := provider.GetSecretOrEnv(ctx, "google-search-api-key", "GOOGLE_SEARCH_API_KEY"); err == nil && key != "" {
		cfg.Enrichment.GoogleSearchAPIKey = key
	}
	if key, err := provider.GetSecretOrEnv(ctx, "linkedin-access-token", "LINKEDIN_ACCESS_TOKEN"); err == nil && key != "" {
		cfg.Enrichment.LinkedInAccessToken = key
	}

	// Storage connection string (for cloud storage)
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "ProposalHub API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "proposalhub")
	v.SetDefault("database.user", "proposalhub_user")
	v.SetDefault("database.password", "proposalhub_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Auth defaults
	v.SetDefault("auth.tokenTTL", 86400) // 24 hours
	v.SetDefault("auth.cookieName", "ph_session")
	v.SetDefault("auth.cookieSecure", false)

	// WebAuthn defaults
	v.SetDefault("webauthn.rpid", "localhost")
	v.SetDefault("webauthn.rpdisplayname", "ProposalHub")
	v.SetDefault("webauthn.rporigins", []string{"http://localhost:3000"})
	v.SetDefault("webauthn.sessionTTL", 300) // 5 minutes per ceremony

	// Enrichment defaults
	v.SetDefault("enrichment.openAIBaseURL", "https://api.openai.com/v1")
	v.SetDefault("enrichment.openAIModels", []string{"gpt-4o", "gpt-4o-mini"})
	v.SetDefault("enrichment.perplexityModel", "sonar-pro")
	v.SetDefault("enrichment.clearbitLogoBaseURL", "https://logo.clearbit.com")
	v.SetDefault("enrichment.attemptTimeout", 30)
	v.SetDefault("enrichment.scrapeEnabled", false)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.maxUploadSizeMB", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300) // 5 minutes

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false) // Enable in production with HTTPS
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Jobs defaults
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.sessionSweepSchedule", "*/10 * * * *")
}
