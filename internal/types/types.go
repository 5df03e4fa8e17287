package types

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetAuthConfig() AuthConfig
	GetCORSConfig() CORSConfig
	GetPerformanceConfig() PerformanceConfig
	GetLogConfig() LogConfig
	GetDatabaseConfig() DatabaseConfig
	GetPipelineConfig() PipelineConfig
	GetThrottleConfig() ThrottleConfig
	GetBudgetConfig() BudgetConfig
	GetComplianceConfig() ComplianceConfig
	GetEffectiveServerConfig() ServerConfig
	GetRedisDSN() string
	Validate() error
	DisplayServerConfig()
	ReloadConfig() error
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port                    int    `json:"port"`
	Host                    string `json:"host"`
	ReadTimeout             int    `json:"read_timeout"`
	WriteTimeout            int    `json:"write_timeout"`
	IdleTimeout             int    `json:"idle_timeout"`
	GracefulShutdownTimeout int    `json:"graceful_shutdown_timeout"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Key string `json:"key"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// PerformanceConfig represents performance configuration
type PerformanceConfig struct {
	MaxConcurrentRequests int `json:"max_concurrent_requests"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// PipelineConfig holds the knobs for the translation pipeline.
type PipelineConfig struct {
	// MaxTextLength is the maximum number of characters accepted per request.
	MaxTextLength int `json:"max_text_length"`
	// CacheTTLSeconds bounds the lifetime of a cached translation.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
	// DetectionConfidenceThreshold is the minimum detector confidence below
	// which the pipeline halts and asks the caller to disambiguate.
	DetectionConfidenceThreshold float64 `json:"detection_confidence_threshold"`
}

// ThrottleConfig holds admission limits for in-flight routing work.
type ThrottleConfig struct {
	// MaxConcurrent limits simultaneous in-flight router calls per process.
	MaxConcurrent int `json:"max_concurrent"`
	// TenantPerMinute caps per-tenant requests in a sliding one-minute window.
	TenantPerMinute int `json:"tenant_per_minute"`
}

// ComplianceConfig holds the policy the gate screens every routing candidate
// against.
type ComplianceConfig struct {
	// Region is the deployment region a backend must serve. Empty disables
	// the region check.
	Region string `json:"region"`
	// RequiredCertifications lists certifications every backend must hold.
	RequiredCertifications []string `json:"required_certifications"`
	// BannedPhrases block a request outright when present in the text.
	BannedPhrases []string `json:"banned_phrases"`
}

// BudgetConfig holds the daily spending cap applied per tenant.
type BudgetConfig struct {
	// DailyCapPerTenant is expressed in cost micro-units, the same unit as a
	// backend's cost-per-character, so reservations stay integer arithmetic.
	DailyCapPerTenant int64 `json:"daily_cap_per_tenant"`
}
