package routers

import (
	"expvar"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/internal/middleware"
)

// DefaultPrefix pprof 路由前缀
const DefaultPrefix = "/debug/pprof"

// 由 pprof.Handler 按名称提供的 profile
var namedProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPrivateRouterWithLogger 私有路由：metrics 与 expvar 始终开放，pprof 仅 debug 模式
func NewPrivateRouterWithLogger(runMode string, logger *zap.Logger) *gin.Engine {
	debug := runMode == gin.DebugMode

	r := gin.New()
	if debug {
		r.Use(gin.Recovery())
	} else {
		r.Use(middleware.RecoveryWithLogger(logger))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))

	if !debug {
		return r
	}

	p := r.Group(DefaultPrefix)
	p.GET("/", gin.WrapF(pprof.Index))
	p.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	p.GET("/profile", gin.WrapF(pprof.Profile))
	p.GET("/trace", gin.WrapF(pprof.Trace))
	p.Match([]string{"GET", "POST"}, "/symbol", gin.WrapF(pprof.Symbol))
	for _, name := range namedProfiles {
		p.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
	return r
}
