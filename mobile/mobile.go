// Package mobile 给 gomobile bind 用，只暴露字符串参数
package mobile

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/logx"
	httpserver "xiangqi/internal/server/http"
)

var (
	mu     sync.Mutex
	server *http.Server
	eng    *engine.Engine
)

// StartServer 后台启动本地服务，返回空串表示成功，否则是错误信息。
// webDir：解压后的网页目录；modelPath / libPath 为空时只用 rollout；port 如 "2888"
func StartServer(webDir string, modelPath string, libPath string, port string) string {
	mu.Lock()
	defer mu.Unlock()
	if server != nil {
		return "server already running"
	}

	cfg := config.Default()
	log := logx.NewLogger(cfg.Log.Level)

	eng = engine.NewEngine(log)
	if modelPath != "" {
		mc := cfg.Model
		mc.Path = modelPath
		if libPath != "" {
			mc.Library = libPath
		}
		mc.Providers = []string{"cpu"}
		if err := eng.InitNN(mc); err != nil {
			log.Warn().Err(err).Msg("NN unavailable, falling back to rollout")
		} else {
			cfg.Search.Mode = engine.ModeGuided
		}
	}

	srv := httpserver.NewServer(eng, cfg.Search, log)
	server = &http.Server{
		Addr:              "127.0.0.1:" + port,
		Handler:           srv.Handler(webDir, webDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 不能阻塞 Android UI 线程
	go func(s *http.Server) {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}(server)
	return ""
}

func StopServer() {
	mu.Lock()
	defer mu.Unlock()
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
	server = nil
	if eng != nil {
		eng.Close()
		eng = nil
	}
}
