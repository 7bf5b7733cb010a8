package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"go.uber.org/zap"
	"gorm.io/gorm"

	internalApp "github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/dao"
	"github.com/haierkeys/note-feed-service/internal/routers"
	"github.com/haierkeys/note-feed-service/internal/task"
	"github.com/haierkeys/note-feed-service/pkg/logger"
	"github.com/haierkeys/note-feed-service/pkg/safe_close"
	"github.com/haierkeys/note-feed-service/pkg/validator"
)

const (
	banner = `
    _   __      __          ______              __
   / | / /___  / /____     / ____/__  ___  ____/ /
  /  |/ / __ \/ __/ _ \   / /_  / _ \/ _ \/ __  /
 / /|  / /_/ / /_/  __/  / __/ /  __/  __/ /_/ /
/_/ |_/\____/\__/\___/  /_/    \___/\___/\__,_/   `

	// httpStopTimeout 单个 HTTP 服务收到关闭信号后的停止上限
	httpStopTimeout = 5 * time.Second
)

// Server 一次运行实例，配置热重载时整体替换
type Server struct {
	logger *zap.Logger
	config *internalApp.AppConfig
	db     *gorm.DB
	ut     *ut.UniversalTranslator
	app    *internalApp.App
	sc     *safe_close.SafeClose
}

// stage 启动阶段，失败时中止并回滚已打开的资源
type stage struct {
	name string
	run  func(*Server) error
}

var stages = []stage{
	{"logger", (*Server).setupLogger},
	{"storage", (*Server).setupStorage},
	{"database", (*Server).setupDatabase},
	{"app", (*Server).setupApp},
	{"validator", (*Server).setupValidator},
}

// NewServer 加载配置并依次完成各启动阶段，随后挂载调度器与 HTTP 服务
func NewServer(runEnv *runFlags) (*Server, error) {
	cfg, path, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, runEnv)

	if cfg.Server.RunMode != "" {
		gin.SetMode(cfg.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{config: cfg, sc: safe_close.NewSafeClose()}
	for _, st := range stages {
		if err := st.run(s); err != nil {
			s.rollback()
			return nil, fmt.Errorf("init %s: %w", st.name, err)
		}
	}

	s.warnDefaultSecret()
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n",
		banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", path))

	s.startScheduler()

	if addr := cfg.Server.HttpPort; addr != "" {
		s.logger.Warn("public api listening", zap.String("addr", addr))
		s.serve("api service", s.newHTTPServer(addr, routers.NewRouter(s.app, s.ut)))
	}
	if addr := cfg.Server.PrivateHttpListen; addr != "" {
		s.logger.Info("private api listening", zap.String("addr", addr))
		s.serve("private api service", s.newHTTPServer(addr, routers.NewPrivateRouterWithLogger(cfg.Server.RunMode, s.logger)))
	}

	// App 最后关闭，HTTP 服务停止后再排空 worker pool 与写队列
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
			return
		}
		s.logger.Info("app container shutdown gracefully")
	})

	return s, nil
}

// applyFlags 命令行参数优先于配置文件
func applyFlags(cfg *internalApp.AppConfig, runEnv *runFlags) {
	if runEnv.runMode != "" {
		cfg.Server.RunMode = runEnv.runMode
	}
	if runEnv.port != "" {
		cfg.Server.HttpPort = normalizePort(runEnv.port)
	}
}

func (s *Server) setupLogger() error {
	lg, err := logger.NewLogger(logger.Config{
		Level:      s.config.Log.Level,
		File:       s.config.Log.File,
		Production: s.config.Log.Production,
	})
	if err != nil {
		return err
	}
	s.logger = lg
	return nil
}

// setupStorage 创建日志目录与 sqlite 数据目录
func (s *Server) setupStorage() error {
	dirs := []string{filepath.Dir(s.config.Log.File)}
	if db := s.config.Database; db.Type == "sqlite" && db.Path != ":memory:" {
		dirs = append(dirs, filepath.Dir(db.Path))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (s *Server) setupDatabase() error {
	db, err := dao.NewDBEngineWithConfig(s.config.GetDatabaseConfig(), s.logger)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Server) setupApp() error {
	a, err := internalApp.NewApp(s.config, s.logger, s.db)
	if err != nil {
		return err
	}
	s.app = a
	return nil
}

func (s *Server) setupValidator() error {
	uni, err := validator.Install()
	if err != nil {
		return err
	}
	s.ut = uni
	return nil
}

// rollback 释放启动失败前已打开的资源
func (s *Server) rollback() {
	if s.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpStopTimeout)
		defer cancel()
		_ = s.app.Shutdown(ctx)
		return
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// warnDefaultSecret 签名密钥仍为占位符或为空时告警
func (s *Server) warnDefaultSecret() {
	key := s.config.Security.AuthTokenKey
	if key != "" && key != defaultTokenKey {
		return
	}
	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n⚠️  SECURITY WARNING: Using default secret key!\n\n"+
		"Please modify 'security.auth-token-key' in config.yaml\n"+
		"Generate a secure key with:\n  openssl rand -base64 32\n%s\n\n", line, line)
	s.logger.Warn("using default secret key, change security.auth-token-key in config.yaml")
}

func (s *Server) startScheduler() {
	m := task.NewManager(s.logger, s.sc, s.app)
	if err := m.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}
	m.Start()
}

func (s *Server) newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        h,
		ReadTimeout:    time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(s.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// serve 启动 HTTP 服务；监听失败时触发整体关闭
func (s *Server) serve(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			s.logger.Error(name+" err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), httpStopTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

// normalizePort 接受 "9000"、":9000" 或 "host:9000"
func normalizePort(p string) string {
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}
