package serve

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/VictoriaMetrics/metrics"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// startAdminAPI exposes /healthz, /metrics and the pprof handlers on a
// separate HTTP listener. The admin API is optional: an empty endpoint
// returns a nil server and nothing is started.
func startAdminAPI(endpoint string, log *zap.Logger) (*http.Server, error) {
	if endpoint == "" {
		return nil, nil
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(ginzap.Ginzap(log.Named("admin"), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log.Named("admin"), true))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", func(c *gin.Context) {
		metrics.WritePrometheus(c.Writer, true)
	})

	// pprof handlers for live profiling
	r.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	r.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	r.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	r.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	r.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))

	// bind synchronously so an unusable endpoint fails startup
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: r}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("admin server error", zap.Error(err))
		}
	}()
	log.Info("admin API started", zap.String("endpoint", endpoint))

	return srv, nil
}
