// Package config 提供了统一的配置加载、校验与热更新能力.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wyfcoding/simplex/logging"
)

// Config 全局顶级配置结构.
type Config struct {
	Version   string          `mapstructure:"version"   toml:"version"`
	Server    ServerConfig    `mapstructure:"server"    toml:"server"`
	Log       LogConfig       `mapstructure:"log"       toml:"log"`
	Solver    SolverConfig    `mapstructure:"solver"    toml:"solver"`
	Service   ServiceConfig   `mapstructure:"service"   toml:"service"`
	Cache     CacheConfig     `mapstructure:"cache"     toml:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" toml:"ratelimit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   toml:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"   toml:"tracing"`
	Snowflake SnowflakeConfig `mapstructure:"snowflake" toml:"snowflake"`
}

// ServerConfig 定义服务器运行时的基础网络与环境参数.
type ServerConfig struct {
	Name        string `mapstructure:"name"        toml:"name"        validate:"required"`
	Environment string `mapstructure:"environment" toml:"environment" validate:"oneof=dev test prod"`
	HTTP        struct {
		Addr              string        `mapstructure:"addr"                toml:"addr"`
		ReadTimeout       time.Duration `mapstructure:"read_timeout"        toml:"read_timeout"`
		ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" toml:"read_header_timeout"`
		WriteTimeout      time.Duration `mapstructure:"write_timeout"       toml:"write_timeout"`
		IdleTimeout       time.Duration `mapstructure:"idle_timeout"        toml:"idle_timeout"`
		MaxHeaderBytes    int           `mapstructure:"max_header_bytes"    toml:"max_header_bytes"`
		MaxBodyBytes      int64         `mapstructure:"max_body_bytes"      toml:"max_body_bytes"`
		Port              int           `mapstructure:"port"                toml:"port"                validate:"required,min=1,max=65535"`
	} `mapstructure:"http" toml:"http"`
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level         string        `mapstructure:"level"          toml:"level"       validate:"omitempty,oneof=debug info warn error"`
	Output        string        `mapstructure:"output"         toml:"output"      validate:"omitempty,oneof=stdout file both"`
	File          string        `mapstructure:"file"           toml:"file"`
	MaxSize       int           `mapstructure:"max_size"       toml:"max_size"`
	MaxBackups    int           `mapstructure:"max_backups"    toml:"max_backups"`
	MaxAge        int           `mapstructure:"max_age"        toml:"max_age"`
	Compress      bool          `mapstructure:"compress"       toml:"compress"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold" toml:"slow_threshold"` // HTTP 慢请求阈值。
}

// SolverConfig 单纯形引擎参数，允许热更新.
type SolverConfig struct {
	Epsilon     float64 `mapstructure:"epsilon"      toml:"epsilon"      validate:"gte=0,lt=1"`
	PivotFactor int     `mapstructure:"pivot_factor" toml:"pivot_factor" validate:"gte=0"`
	MaxPivots   int     `mapstructure:"max_pivots"   toml:"max_pivots"   validate:"gte=0"`
	Trace       bool    `mapstructure:"trace"        toml:"trace"`
}

// ServiceConfig 求解服务参数.
type ServiceConfig struct {
	MaxBatch       int           `mapstructure:"max_batch"       toml:"max_batch"       validate:"gte=0"`
	MaxConcurrency int           `mapstructure:"max_concurrency" toml:"max_concurrency" validate:"gte=0"`
	MaxVariables   int           `mapstructure:"max_variables"   toml:"max_variables"   validate:"gte=0"`
	Timeout        time.Duration `mapstructure:"timeout"         toml:"timeout"`
}

// CacheConfig 求解结果本地缓存参数.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" toml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"     toml:"ttl"`
	MaxMB   int           `mapstructure:"max_mb"  toml:"max_mb"  validate:"gte=0"`
	Shards  int           `mapstructure:"shards"  toml:"shards"  validate:"gte=0"`
}

// RateLimitConfig 定义令牌桶限流参数.
type RateLimitConfig struct {
	Rate    int  `mapstructure:"rate"    toml:"rate"  validate:"gte=0"`
	Burst   int  `mapstructure:"burst"   toml:"burst" validate:"gte=0"`
	Enabled bool `mapstructure:"enabled" toml:"enabled"`
}

// MetricsConfig 普罗米修斯监控指标暴露配置.
type MetricsConfig struct {
	Path    string `mapstructure:"path"    toml:"path"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// TracingConfig 分布式链路追踪（OpenTelemetry）配置.
type TracingConfig struct {
	ServiceName  string  `mapstructure:"service_name"  toml:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint"`
	SamplerRatio float64 `mapstructure:"sampler_ratio" toml:"sampler_ratio" validate:"gte=0,lte=1"`
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"`
}

// SnowflakeConfig 分布式 ID 生成器参数.
type SnowflakeConfig struct {
	StartTime string `mapstructure:"start_time" toml:"start_time"`
	Type      string `mapstructure:"type"       toml:"type"       validate:"omitempty,oneof=snowflake sonyflake"`
	MachineID int64  `mapstructure:"machine_id" toml:"machine_id"`
}

// LoggingConfig 转换为 logging 包使用的配置.
func (c *Config) LoggingConfig(module string) logging.Config {
	return logging.Config{
		Service:    c.Server.Name,
		Module:     module,
		Level:      c.Log.Level,
		Output:     c.Log.Output,
		File:       c.Log.File,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
		Compress:   c.Log.Compress,
	}
}

// Default 返回各字段取默认值的配置，Load 以它为底再覆盖文件与环境变量.
func Default() *Config {
	c := &Config{Version: "dev"}
	c.Server.Name = "lpsolve"
	c.Server.Environment = "dev"
	c.Server.HTTP.Port = 8080
	c.Server.HTTP.ReadTimeout = 10 * time.Second
	c.Server.HTTP.ReadHeaderTimeout = 5 * time.Second
	c.Server.HTTP.WriteTimeout = 30 * time.Second
	c.Server.HTTP.IdleTimeout = 60 * time.Second
	c.Server.HTTP.MaxBodyBytes = 8 << 20
	c.Log = LogConfig{Level: "info", Output: "stdout", MaxSize: 100, MaxBackups: 3, MaxAge: 7, SlowThreshold: time.Second}
	c.Solver = SolverConfig{Epsilon: 1e-9, PivotFactor: 50}
	c.Service = ServiceConfig{MaxBatch: 64, MaxConcurrency: 8, MaxVariables: 2000, Timeout: 30 * time.Second}
	c.Cache = CacheConfig{Enabled: true, TTL: 10 * time.Minute, MaxMB: 64, Shards: 64}
	c.RateLimit = RateLimitConfig{Rate: 100, Burst: 200}
	c.Metrics = MetricsConfig{Path: "/metrics", Enabled: true}
	c.Tracing = TracingConfig{ServiceName: "lpsolve", SamplerRatio: 1}
	c.Snowflake = SnowflakeConfig{Type: "snowflake", MachineID: 1}
	return c
}

var (
	vInstance = viper.New()
	validate  = validator.New()

	hookMu   sync.RWMutex
	onReload []func(*Config)
)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	hookMu.Lock()
	defer hookMu.Unlock()
	onReload = append(onReload, hook)
}

// Validate 使用 validator 校验配置结构.
func Validate(conf *Config) error {
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Load 读取配置文件并启动热更新监听。文件类型按扩展名推断，缺省为 toml.
func Load(path string, conf *Config) error {
	if err := read(vInstance, path, conf); err != nil {
		return err
	}

	vInstance.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)
		reload(vInstance, conf)
	})
	vInstance.WatchConfig()

	return nil
}

func read(v *viper.Viper, path string, conf *Config) error {
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config error: %w", err)
	}
	if err := v.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}
	return Validate(conf)
}

// reload 在临时副本上解析与校验，校验失败时保留旧配置.
func reload(v *viper.Viper, conf *Config) {
	next := *conf
	if err := v.Unmarshal(&next); err != nil {
		slog.Error("reload config unmarshal failed", "error", err)
		return
	}
	if err := Validate(&next); err != nil {
		slog.Error("reload config validation failed", "error", err)
		return
	}

	*conf = next
	logging.SetLevel(conf.Log.Level)
	slog.Info("config hot-reloaded and validated successfully")

	hookMu.RLock()
	hooks := append([]func(*Config){}, onReload...)
	hookMu.RUnlock()
	for _, hook := range hooks {
		hook(conf)
	}
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

// PrintWithMask 脱敏打印当前配置.
func PrintWithMask(conf any) {
	data, err := json.Marshal(conf)
	if err != nil {
		slog.Error("failed to marshal config for printing", "error", err)
		return
	}

	var configMap map[string]any
	if err := json.Unmarshal(data, &configMap); err != nil {
		slog.Error("failed to unmarshal config for masking", "error", err)
		return
	}

	mask(configMap)

	maskedJSON, err := json.MarshalIndent(configMap, "  ", "  ")
	if err != nil {
		slog.Error("failed to marshal masked config", "error", err)
		return
	}

	slog.Info("current effective configuration", "config", string(maskedJSON))
}

func mask(configMap map[string]any) {
	sensitiveKeys := []string{"password", "secret", "dsn", "key", "token", "endpoint"}

	for key, val := range configMap {
		if subMap, ok := val.(map[string]any); ok {
			mask(subMap)
			continue
		}

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(strings.ToLower(key), sensitiveKey) {
				configMap[key] = "******"
				break
			}
		}
	}
}

// GetViper 返回底层的 Viper 实例.
func GetViper() *viper.Viper {
	return vInstance
}
