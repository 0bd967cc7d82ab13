package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/logx"
	httpserver "xiangqi/internal/server/http"
)

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux / bsd
		cmd = exec.Command("xdg-open", url)
	}

	_ = cmd.Start() // 无图形界面时失败也无所谓
}

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	webDir := flag.String("web", "", "directory with desktop web assets")
	modelPath := flag.String("model", "", "path to ONNX model file; enables guided search")
	libPath := flag.String("lib", "", "path to the onnxruntime shared library")
	mode := flag.String("mode", "", "default search mode: rollout or guided")
	iterations := flag.Int("iterations", 0, "default iterations per AI move")
	noBrowser := flag.Bool("no-browser", false, "do not open a browser")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	log := logx.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *webDir != "" {
		cfg.Server.WebDir = *webDir
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
		cfg.Server.UseNN = true
	}
	if *libPath != "" {
		cfg.Model.Library = *libPath
	}
	if *mode != "" {
		cfg.Search.Mode = engine.Mode(*mode)
	}
	if *iterations > 0 {
		cfg.Search.Iterations = *iterations
	}

	eng := engine.NewEngine(log)
	defer eng.Close()
	if cfg.Server.UseNN {
		log.Info().Str("model", cfg.Model.Path).Str("lib", cfg.Model.Library).Msg("initializing NN")
		if err := eng.InitNN(cfg.Model); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize NN")
		}
	}
	if cfg.Search.Mode == engine.ModeGuided && !eng.UseNN {
		log.Warn().Msg("guided mode without a model, using rollout")
		cfg.Search.Mode = engine.ModeRollout
	}

	srv := httpserver.NewServer(eng, cfg.Search, log)
	hs := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(cfg.Server.WebDir, cfg.Server.MobileDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("web", cfg.Server.WebDir).
			Str("mode", string(cfg.Search.Mode)).Int("iterations", cfg.Search.Iterations).Msg("listening")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	if !*noBrowser {
		// 等服务起来再开浏览器
		go func() {
			time.Sleep(100 * time.Millisecond)
			openBrowser("http://" + browserHost(cfg.Server.Addr))
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func browserHost(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
