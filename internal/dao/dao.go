// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/haierkeys/note-feed-service/internal/model"
	"github.com/haierkeys/note-feed-service/pkg/fileurl"
)

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	// Type sqlite / mysql / postgres
	Type        string
	Path        string
	UserName    string
	Password    string
	Host        string
	Name        string
	TablePrefix string
	AutoMigrate bool
	Charset     string
	ParseTime   bool
	// MaxIdleConns 空闲连接上限
	MaxIdleConns int
	// MaxOpenConns 打开连接上限
	MaxOpenConns int
	// ConnMaxLifetime 连接最大复用时间
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime 连接最大空闲时间
	ConnMaxIdleTime time.Duration
	// RunMode debug 时输出 SQL 日志
	RunMode string
	// Tracing 是否注册 opentracing 插件
	Tracing bool
}

// Dao 持有数据库连接，供各仓储共享
type Dao struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New 创建 Dao
func New(db *gorm.DB, lg *zap.Logger) *Dao {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Dao{db: db, logger: lg}
}

// DB 返回绑定 ctx 的会话
func (d *Dao) DB(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// Transaction 在事务中执行 fn
func (d *Dao) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.db.WithContext(ctx).Transaction(fn)
}

// NewDBEngineWithConfig 按配置创建 gorm 引擎
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(c)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if c.RunMode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Type)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}

	if c.Tracing {
		if err := db.Use(&gormTracing.OpentracingPlugin{}); err != nil {
			return nil, errors.Wrap(err, "register tracing plugin")
		}
	}

	if c.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	if lg != nil {
		lg.Info("database ready",
			zap.String("type", c.Type),
			zap.Bool("autoMigrate", c.AutoMigrate),
			zap.Bool("tracing", c.Tracing))
	}
	return db, nil
}

func dialectorFor(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "sqlite", "":
		if c.Path == "" {
			return nil, errors.New("database.path is required for sqlite")
		}
		if c.Path != ":memory:" && !fileurl.IsExist(c.Path) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create sqlite directory")
			}
		}
		// 单连接串行写，开启 WAL 与 busy_timeout
		return sqlite.Open(c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), nil
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName, c.Password, c.Host, c.Name, charset, c.ParseTime)), nil
	case "postgres":
		host, port, err := net.SplitHostPort(c.Host)
		if err != nil {
			host, port = c.Host, "5432"
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			host, port, c.UserName, c.Password, c.Name)), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}

// pageScope 应用 ID 游标与条数限制，结果 ID 降序
func pageScope(beforeID int64, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if beforeID > 0 {
			db = db.Where("id < ?", beforeID)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db.Order("id DESC")
	}
}
