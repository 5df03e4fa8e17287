// Package config provides environment-based configuration management.
package config

import (
	"fmt"
	"os"

	"lingo-load/internal/types"
	"lingo-load/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Manager implements types.ConfigManager backed by environment variables.
// A .env file is loaded on startup when present; real environment variables
// always win over file values.
type Manager struct {
	serverConfig     types.ServerConfig
	authConfig       types.AuthConfig
	corsConfig       types.CORSConfig
	perfConfig       types.PerformanceConfig
	logConfig        types.LogConfig
	databaseConfig   types.DatabaseConfig
	pipelineConfig   types.PipelineConfig
	throttleConfig   types.ThrottleConfig
	budgetConfig     types.BudgetConfig
	complianceConfig types.ComplianceConfig
	redisDSN         string
}

// NewManager creates a configuration manager from the environment.
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	m := &Manager{}
	if err := m.ReloadConfig(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ReloadConfig re-reads all configuration sections from the environment.
func (m *Manager) ReloadConfig() error {
	m.serverConfig = types.ServerConfig{
		Port:                    utils.ParseInteger(os.Getenv("PORT"), 3001),
		Host:                    utils.GetEnvOrDefault("HOST", "0.0.0.0"),
		ReadTimeout:             utils.ParseInteger(os.Getenv("SERVER_READ_TIMEOUT"), 60),
		WriteTimeout:            utils.ParseInteger(os.Getenv("SERVER_WRITE_TIMEOUT"), 120),
		IdleTimeout:             utils.ParseInteger(os.Getenv("SERVER_IDLE_TIMEOUT"), 120),
		GracefulShutdownTimeout: utils.ParseInteger(os.Getenv("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT"), 10),
	}

	m.authConfig = types.AuthConfig{
		Key: os.Getenv("AUTH_KEY"),
	}

	m.corsConfig = types.CORSConfig{
		Enabled:          utils.ParseBoolean(os.Getenv("ENABLE_CORS"), true),
		AllowedOrigins:   utils.ParseStringSlice(os.Getenv("ALLOWED_ORIGINS"), []string{"*"}),
		AllowedMethods:   utils.ParseStringSlice(os.Getenv("ALLOWED_METHODS"), []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   utils.ParseStringSlice(os.Getenv("ALLOWED_HEADERS"), []string{"*"}),
		AllowCredentials: utils.ParseBoolean(os.Getenv("ALLOW_CREDENTIALS"), false),
	}

	m.perfConfig = types.PerformanceConfig{
		MaxConcurrentRequests: utils.ParseInteger(os.Getenv("MAX_CONCURRENT_REQUESTS"), 100),
	}

	m.logConfig = types.LogConfig{
		Level:      utils.GetEnvOrDefault("LOG_LEVEL", "info"),
		Format:     utils.GetEnvOrDefault("LOG_FORMAT", "text"),
		EnableFile: utils.ParseBoolean(os.Getenv("LOG_ENABLE_FILE"), false),
		FilePath:   utils.GetEnvOrDefault("LOG_FILE_PATH", "./data/logs/app.log"),
	}

	m.databaseConfig = types.DatabaseConfig{
		DSN: os.Getenv("DATABASE_DSN"),
	}

	m.pipelineConfig = types.PipelineConfig{
		MaxTextLength:                utils.ParseInteger(os.Getenv("PIPELINE_MAX_TEXT_LENGTH"), 5000),
		CacheTTLSeconds:              utils.ParseInteger(os.Getenv("PIPELINE_CACHE_TTL_SECONDS"), 600),
		DetectionConfidenceThreshold: utils.ParseFloat(os.Getenv("PIPELINE_DETECTION_CONFIDENCE_THRESHOLD"), 0.75),
	}

	m.throttleConfig = types.ThrottleConfig{
		MaxConcurrent:   utils.ParseInteger(os.Getenv("THROTTLE_MAX_CONCURRENT"), 32),
		TenantPerMinute: utils.ParseInteger(os.Getenv("THROTTLE_TENANT_PER_MINUTE"), 60),
	}

	m.budgetConfig = types.BudgetConfig{
		DailyCapPerTenant: utils.ParseInt64(os.Getenv("BUDGET_DAILY_CAP_PER_TENANT"), 10_000_000),
	}

	m.complianceConfig = types.ComplianceConfig{
		Region:                 os.Getenv("COMPLIANCE_REGION"),
		RequiredCertifications: utils.ParseStringSlice(os.Getenv("COMPLIANCE_REQUIRED_CERTIFICATIONS"), nil),
		BannedPhrases:          utils.ParseStringSlice(os.Getenv("COMPLIANCE_BANNED_PHRASES"), nil),
	}

	m.redisDSN = os.Getenv("REDIS_DSN")

	return nil
}

// Validate checks configuration consistency.
func (m *Manager) Validate() error {
	if m.serverConfig.Port < 1 || m.serverConfig.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", m.serverConfig.Port)
	}
	if len(m.authConfig.Key) > 0 && len(m.authConfig.Key) < 16 {
		return fmt.Errorf("AUTH_KEY must be at least 16 characters when set")
	}
	if m.databaseConfig.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is not configured")
	}
	if m.pipelineConfig.MaxTextLength < 1 {
		return fmt.Errorf("PIPELINE_MAX_TEXT_LENGTH must be positive")
	}
	if m.pipelineConfig.DetectionConfidenceThreshold <= 0 || m.pipelineConfig.DetectionConfidenceThreshold > 1 {
		return fmt.Errorf("PIPELINE_DETECTION_CONFIDENCE_THRESHOLD must be in (0, 1]")
	}
	if m.throttleConfig.MaxConcurrent < 1 {
		return fmt.Errorf("THROTTLE_MAX_CONCURRENT must be positive")
	}
	if m.throttleConfig.TenantPerMinute < 1 {
		return fmt.Errorf("THROTTLE_TENANT_PER_MINUTE must be positive")
	}
	if m.budgetConfig.DailyCapPerTenant < 0 {
		return fmt.Errorf("BUDGET_DAILY_CAP_PER_TENANT must not be negative")
	}
	return nil
}

func (m *Manager) GetAuthConfig() types.AuthConfig               { return m.authConfig }
func (m *Manager) GetCORSConfig() types.CORSConfig               { return m.corsConfig }
func (m *Manager) GetPerformanceConfig() types.PerformanceConfig { return m.perfConfig }
func (m *Manager) GetLogConfig() types.LogConfig                 { return m.logConfig }
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig       { return m.databaseConfig }
func (m *Manager) GetPipelineConfig() types.PipelineConfig       { return m.pipelineConfig }
func (m *Manager) GetThrottleConfig() types.ThrottleConfig       { return m.throttleConfig }
func (m *Manager) GetBudgetConfig() types.BudgetConfig           { return m.budgetConfig }
func (m *Manager) GetComplianceConfig() types.ComplianceConfig   { return m.complianceConfig }
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig  { return m.serverConfig }
func (m *Manager) GetRedisDSN() string                           { return m.redisDSN }

// DisplayServerConfig logs a startup summary of the effective configuration.
func (m *Manager) DisplayServerConfig() {
	logrus.Info("")
	logrus.Info("======= Server Configuration =======")
	logrus.Infof("  Listen address:       %s:%d", m.serverConfig.Host, m.serverConfig.Port)
	logrus.Infof("  Max text length:      %d chars", m.pipelineConfig.MaxTextLength)
	logrus.Infof("  Cache TTL:            %ds", m.pipelineConfig.CacheTTLSeconds)
	logrus.Infof("  Detection threshold:  %.2f", m.pipelineConfig.DetectionConfidenceThreshold)
	logrus.Infof("  Max concurrent:       %d", m.throttleConfig.MaxConcurrent)
	logrus.Infof("  Tenant rate limit:    %d/min", m.throttleConfig.TenantPerMinute)
	logrus.Infof("  Daily budget cap:     %d micro-units/tenant", m.budgetConfig.DailyCapPerTenant)
	if m.redisDSN != "" {
		logrus.Info("  Store:                redis")
	} else {
		logrus.Info("  Store:                memory")
	}
	logrus.Info("====================================")
	logrus.Info("")
}
