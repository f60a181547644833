// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hegui/hegui/pkg/engine"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Rules    RulesConfig    `yaml:"rules"`
	Advisory AdvisoryConfig `yaml:"advisory"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// RulesConfig 合规规则阈值配置
type RulesConfig struct {
	MinTotalPPD           float64       `yaml:"min_total_ppd"`
	MinRNPPD              float64       `yaml:"min_rn_ppd"`
	CapacityFactor        float64       `yaml:"capacity_factor"`
	FallbackCensus        float64       `yaml:"fallback_census"`
	WeeklyHoursLimit      float64       `yaml:"weekly_hours_limit"`
	CriticalOvertimeDelta float64       `yaml:"critical_overtime_delta"`
	MinStaffPerHour       int           `yaml:"min_staff_per_hour"`
	DailyOvertimeHours    float64       `yaml:"daily_overtime_hours"`
	AnalysisWorkers       int           `yaml:"analysis_workers"`
	AnalysisTimeout       time.Duration `yaml:"analysis_timeout"`
}

// RuleConfig 转换为引擎规则配置
func (c *RulesConfig) RuleConfig() engine.RuleConfig {
	return engine.RuleConfig{
		MinTotalPPD:           c.MinTotalPPD,
		MinRNPPD:              c.MinRNPPD,
		CapacityFactor:        c.CapacityFactor,
		FallbackCensus:        c.FallbackCensus,
		WeeklyHoursLimit:      c.WeeklyHoursLimit,
		CriticalOvertimeDelta: c.CriticalOvertimeDelta,
		MinStaffPerHour:       c.MinStaffPerHour,
		DailyOvertimeHours:    c.DailyOvertimeHours,
	}
}

// AdvisoryConfig 辅助分析配置
type AdvisoryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"-"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
// 存在 .env 文件时先行加载，已设置的环境变量不会被覆盖
func Load() (*Config, error) {
	_ = godotenv.Load()

	defaults := engine.DefaultRuleConfig()

	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "hegui"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7013),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "hegui"),
			User:            getEnv("DB_USER", "hegui"),
			Password:        getEnv("DB_PASSWORD", "hegui123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Rules: RulesConfig{
			MinTotalPPD:           getEnvFloat("RULES_MIN_TOTAL_PPD", defaults.MinTotalPPD),
			MinRNPPD:              getEnvFloat("RULES_MIN_RN_PPD", defaults.MinRNPPD),
			CapacityFactor:        getEnvFloat("RULES_CAPACITY_FACTOR", defaults.CapacityFactor),
			FallbackCensus:        getEnvFloat("RULES_FALLBACK_CENSUS", defaults.FallbackCensus),
			WeeklyHoursLimit:      getEnvFloat("RULES_WEEKLY_HOURS_LIMIT", defaults.WeeklyHoursLimit),
			CriticalOvertimeDelta: getEnvFloat("RULES_CRITICAL_OVERTIME_DELTA", defaults.CriticalOvertimeDelta),
			MinStaffPerHour:       getEnvInt("RULES_MIN_STAFF_PER_HOUR", defaults.MinStaffPerHour),
			DailyOvertimeHours:    getEnvFloat("RULES_DAILY_OVERTIME_HOURS", defaults.DailyOvertimeHours),
			AnalysisWorkers:       getEnvInt("RULES_ANALYSIS_WORKERS", 4),
			AnalysisTimeout:       getEnvDuration("RULES_ANALYSIS_TIMEOUT", 30*time.Second),
		},
		Advisory: AdvisoryConfig{
			Enabled:  getEnvBool("ADVISORY_ENABLED", false),
			Endpoint: getEnv("ADVISORY_ENDPOINT", ""),
			APIKey:   getEnv("ADVISORY_API_KEY", ""),
			Timeout:  getEnvDuration("ADVISORY_TIMEOUT", 10*time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
