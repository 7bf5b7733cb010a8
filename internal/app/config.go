// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/haierkeys/note-feed-service/internal/dao"
	"github.com/haierkeys/note-feed-service/pkg/fileurl"
	"github.com/haierkeys/note-feed-service/pkg/util"
	"github.com/haierkeys/note-feed-service/pkg/workerpool"
	"github.com/haierkeys/note-feed-service/pkg/writequeue"
)

// AppConfig 应用配置
type AppConfig struct {
	File      string          `yaml:"-"` // 配置文件路径，不序列化
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Snowflake SnowflakeConfig `yaml:"snowflake"`
	Timeline  TimelineConfig  `yaml:"timeline"`
	Fanout    FanoutConfig    `yaml:"fanout"`
	List      ListConfig      `yaml:"list"`
	Note      NoteConfig      `yaml:"note"`
	Security  SecurityConfig  `yaml:"security"`
	Tracer    TracerConfig    `yaml:"tracer"`
	App       AppSettings     `yaml:"app"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式 debug / release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics / pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path        string `yaml:"path" default:"storage/database/db.sqlite3"`
	UserName    string `yaml:"username"`
	Password    string `yaml:"password"`
	Host        string `yaml:"host"`
	Name        string `yaml:"name"`
	TablePrefix string `yaml:"table-prefix" default:"feed_"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset" default:"utf8mb4"`
	ParseTime   bool   `yaml:"parse-time" default:"true"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m、1h
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// CacheConfig 时间线缓存配置
type CacheConfig struct {
	// Type memory / redis
	Type  string      `yaml:"type" default:"memory"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig Redis 连接配置，Addrs 多于一个时使用集群客户端
type RedisConfig struct {
	Addrs       []string `yaml:"addrs"`
	// Namespace 可选的键前缀，默认为空（键为 timeline:<kind>:<id>）
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	DB          int      `yaml:"db"`
	Namespace   string   `yaml:"namespace"`
	PoolSize    int      `yaml:"pool-size" default:"20"`
	DialTimeout string   `yaml:"dial-timeout" default:"5s"`
}

// SnowflakeConfig 标识生成器配置
type SnowflakeConfig struct {
	// Instance 实例号 0..1023，负数时由机器 ID 派生
	Instance int64 `yaml:"instance" default:"-1"`
	// Epoch 纪元日期 YYYY-MM-DD（UTC）
	Epoch string `yaml:"epoch" default:"2021-01-01"`
}

// TimelineConfig 时间线配置
type TimelineConfig struct {
	DefaultLimit int `yaml:"default-limit" default:"20"`
	MaxLimit     int `yaml:"max-limit" default:"100"`
	// MaxLength 维护任务为每个时间线保留的最新 ID 数，0 时不裁剪
	MaxLength int `yaml:"max-length" default:"0"`
	// TrimCron 裁剪任务的 cron 表达式
	TrimCron string `yaml:"trim-cron" default:"@every 1h"`
}

// FanoutConfig 推送配置
type FanoutConfig struct {
	// Concurrency 单次推送的并发写入上限
	Concurrency int `yaml:"concurrency" default:"64"`
	// Async 创建笔记后在 Worker Pool 上异步推送
	Async bool `yaml:"async" default:"false"`
}

// ListConfig 列表配置
type ListConfig struct {
	MaxMembers  int `yaml:"max-members" default:"1000"`
	MaxTitleLen int `yaml:"max-title-len" default:"100"`
}

// NoteConfig 笔记配置
type NoteConfig struct {
	MaxContentLen int `yaml:"max-content-len" default:"3000"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"note-feed-Auth-Token"`
	// TokenExpiry Token 过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"30d"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
	// SQL 是否为 SQL 注册 opentracing 插件
	SQL bool `yaml:"sql" default:"false"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"16"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"1024"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`

	// MetricsInterval 运行指标刷新间隔
	MetricsInterval string `yaml:"metrics-interval" default:"15s"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 先填充默认值再解析，YAML 中显式写出的零值（如 enabled: false）得以保留
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	if err := c.Validate(); err != nil {
		return nil, realpath, err
	}
	return c, realpath, nil
}

// Validate 检查取值范围
func (c *AppConfig) Validate() error {
	switch strings.ToLower(c.Cache.Type) {
	case "memory":
	case "redis":
		if len(c.Cache.Redis.Addrs) == 0 {
			return errors.New("cache.redis.addrs is required when cache.type is redis")
		}
	default:
		return errors.Errorf("unsupported cache.type %q", c.Cache.Type)
	}
	if c.Snowflake.Instance > 1023 {
		return errors.Errorf("snowflake.instance %d out of range 0..1023", c.Snowflake.Instance)
	}
	if _, err := c.SnowflakeEpoch(); err != nil {
		return err
	}
	if c.Timeline.MaxLength < 0 {
		return errors.New("timeline.max-length must not be negative")
	}
	if c.Timeline.DefaultLimit > c.Timeline.MaxLimit {
		return errors.New("timeline.default-limit exceeds timeline.max-limit")
	}
	return nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := fileurl.CreatePath(c.File, 0754); err != nil {
		return errors.Wrap(err, "create config directory failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetDatabaseConfig 转换为 DAO 层配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: util.MustParseDuration(c.Database.ConnMaxLifetime, 30*time.Minute),
		ConnMaxIdleTime: util.MustParseDuration(c.Database.ConnMaxIdleTime, 10*time.Minute),
		RunMode:         c.Server.RunMode,
		Tracing:         c.Tracer.SQL,
	}
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}
	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()
	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	cfg.WriteTimeout = util.MustParseDuration(c.App.WriteQueueTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = util.MustParseDuration(c.App.WriteQueueIdleTime, cfg.IdleTimeout)
	return cfg
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return util.MustParseDuration(c.Security.TokenExpiry, 30*24*time.Hour)
}

// GetContextTimeout 获取请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

// GetMetricsInterval 获取运行指标刷新间隔
func (c *AppConfig) GetMetricsInterval() time.Duration {
	return util.MustParseDuration(c.App.MetricsInterval, 15*time.Second)
}

// SnowflakeEpoch 解析纪元日期
func (c *AppConfig) SnowflakeEpoch() (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, c.Snowflake.Epoch, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse snowflake.epoch %q", c.Snowflake.Epoch)
	}
	return t, nil
}

// SnowflakeInstance 返回实例号，配置为负数时由机器 ID 派生
func (c *AppConfig) SnowflakeInstance() int64 {
	if c.Snowflake.Instance >= 0 {
		return c.Snowflake.Instance
	}
	return util.MachineInstance(util.GetMachineID(), 1024)
}
