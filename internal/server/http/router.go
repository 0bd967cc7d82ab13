package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"xiangqi/internal/engine"
	"xiangqi/internal/server/game"
)

// 单次请求允许的最大模拟次数
const maxIterations = 50_000

type Server struct {
	games  *game.Manager
	engine *engine.Engine
	search engine.SearchConfig
	log    zerolog.Logger
}

func NewServer(eng *engine.Engine, search engine.SearchConfig, log zerolog.Logger) *Server {
	return &Server{
		games:  game.NewManager(),
		engine: eng,
		search: search,
		log:    log,
	}
}

func (s *Server) Games() *game.Manager { return s.games }

func (s *Server) Engine() *engine.Engine { return s.engine }

// Handler /api/* 加上静态页面；webDir 为空时不挂静态文件
func (s *Server) Handler(webDir, mobileDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Post("/new_game", s.handleNewGame)
		r.Post("/state", s.handleState)
		r.Post("/play", s.handlePlay)
		r.Post("/ai_move", s.handleAiMove)
	})

	if webDir != "" {
		RegisterStaticRoutes(r, webDir, mobileDir)
	}
	return r
}

func accessLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info().
				Str("rid", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("dur", time.Since(start)).
				Msg("request")
		})
	}
}
