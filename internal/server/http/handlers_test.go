package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"xiangqi/internal/engine"
	"xiangqi/internal/mcts"
	"xiangqi/internal/xiangqi"
)

func at(r, c int) xiangqi.Coord { return xiangqi.Coord{Row: r, Col: c} }

func newTestServer(t *testing.T, webDir string) (*Server, http.Handler) {
	t.Helper()
	eng := engine.NewEngine(zerolog.Nop())
	s := NewServer(eng, engine.SearchConfig{Mode: engine.ModeRollout, Iterations: 20, Seed: 11, RolloutCutoff: 30}, zerolog.Nop())
	return s, s.Handler(webDir, "")
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewGameAndState(t *testing.T) {
	_, h := newTestServer(t, "")

	rec := post(t, h, "/api/new_game", struct{}{})
	require.Equal(t, http.StatusOK, rec.Code)
	g := decodeBody[GameResponse](t, rec)
	require.NotEmpty(t, g.GameID)
	require.Equal(t, xiangqi.NewInitialState().Encode(), g.Position)
	require.Equal(t, 0, g.ToMove)
	require.Len(t, g.LegalMoves, 44)
	require.Equal(t, "ongoing", g.Status)
	require.False(t, g.Check)
	require.Nil(t, g.LastMove)
	require.Len(t, g.Pieces, 14)
	require.ElementsMatch(t, []xiangqi.Coord{at(9, 0), at(9, 8)}, g.Pieces["R"])

	rec = post(t, h, "/api/state", StateRequest{GameID: g.GameID})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, g.Position, decodeBody[GameResponse](t, rec).Position)

	rec = post(t, h, "/api/state", StateRequest{GameID: "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlay(t *testing.T) {
	_, h := newTestServer(t, "")
	g := decodeBody[GameResponse](t, post(t, h, "/api/new_game", struct{}{}))

	rec := post(t, h, "/api/play", PlayRequest{GameID: g.GameID, Move: MoveDTO{From: at(7, 1), To: at(7, 4)}})
	require.Equal(t, http.StatusOK, rec.Code)
	after := decodeBody[GameResponse](t, rec)
	require.Equal(t, 1, after.ToMove)
	require.Equal(t, &MoveDTO{From: at(7, 1), To: at(7, 4)}, after.LastMove)
	require.Len(t, after.History, 1)

	t.Run("illegal move is rejected", func(t *testing.T) {
		rec := post(t, h, "/api/play", PlayRequest{GameID: g.GameID, Move: MoveDTO{From: at(0, 0), To: at(5, 5)}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeBody[errorResponse](t, rec).Error, "illegal")

		st := decodeBody[GameResponse](t, post(t, h, "/api/state", StateRequest{GameID: g.GameID}))
		require.Equal(t, 1, st.ToMove)
	})

	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/play", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/play", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAiMove(t *testing.T) {
	_, h := newTestServer(t, "")
	g := decodeBody[GameResponse](t, post(t, h, "/api/new_game", struct{}{}))

	rec := post(t, h, "/api/ai_move", AiMoveRequest{GameID: g.GameID, Iterations: 10, Apply: true})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[AiMoveResponse](t, rec)
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "rollout", resp.Mode)
	require.Equal(t, 10, resp.Iterations)
	require.NotNil(t, resp.BestMove)
	require.True(t, xiangqi.NewInitialState().IsValidMove(resp.BestMove.From, resp.BestMove.To))
	require.NotNil(t, resp.Game)
	require.Equal(t, 1, resp.Game.ToMove)
	require.Equal(t, resp.BestMove, resp.Game.LastMove)

	t.Run("position only", func(t *testing.T) {
		rec := post(t, h, "/api/ai_move", AiMoveRequest{Position: g.Position, ToMove: 1})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[AiMoveResponse](t, rec)
		require.Equal(t, 1, resp.ToMove)
		require.Nil(t, resp.Game)
	})

	t.Run("guided without model", func(t *testing.T) {
		rec := post(t, h, "/api/ai_move", AiMoveRequest{Position: g.Position, Mode: "guided"})
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("bad requests", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, post(t, h, "/api/ai_move", AiMoveRequest{}).Code)
		require.Equal(t, http.StatusBadRequest, post(t, h, "/api/ai_move", AiMoveRequest{Position: "xyz"}).Code)
		require.Equal(t, http.StatusBadRequest, post(t, h, "/api/ai_move", AiMoveRequest{Position: g.Position, Mode: "minimax"}).Code)
		require.Equal(t, http.StatusNotFound, post(t, h, "/api/ai_move", AiMoveRequest{GameID: "nope"}).Code)
	})

	t.Run("no legal moves", func(t *testing.T) {
		lone := strings.Repeat("_", 4) + "k" + strings.Repeat("_", 85)
		rec := post(t, h, "/api/ai_move", AiMoveRequest{Position: lone, ToMove: 0})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[AiMoveResponse](t, rec)
		require.Equal(t, "no_moves", resp.Status)
		require.Nil(t, resp.BestMove)
	})
}

func TestAiMoveGuided(t *testing.T) {
	s, h := newTestServer(t, "")
	s.Engine().SetEvaluator(engine.Uniform(0), 0)

	rec := post(t, h, "/api/ai_move", AiMoveRequest{Position: xiangqi.NewInitialState().Encode(), Mode: "guided", Iterations: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[AiMoveResponse](t, rec)
	require.Equal(t, "guided", resp.Mode)
	require.Equal(t, "ok", resp.Status)
	require.InDelta(t, 0.5, resp.WinProb, 1e-6)
}

// 引擎思考期间有人在同一盘棋上走了一步，apply 不能落到新局面上
func TestAiMoveApplyAfterGameMoved(t *testing.T) {
	s, h := newTestServer(t, "")
	g := decodeBody[GameResponse](t, post(t, h, "/api/new_game", struct{}{}))

	played := false
	s.Engine().SetEvaluator(mcts.EvaluatorFunc(func(st *xiangqi.State) (mcts.Prediction, error) {
		if !played {
			played = true
			_, err := s.Games().Play(g.GameID, xiangqi.Move{From: at(7, 1), To: at(7, 4)})
			require.NoError(t, err)
		}
		return engine.Uniform(0).Evaluate(st)
	}), 0)

	rec := post(t, h, "/api/ai_move", AiMoveRequest{GameID: g.GameID, Mode: "guided", Iterations: 3, Apply: true})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.True(t, played)

	got, err := s.Games().Get(g.GameID)
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	require.Equal(t, xiangqi.Black, got.State.SideToMove)
}

func TestStaticRoutes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(\"xiangqi\")"), 0o644))
	_, h := newTestServer(t, dir)

	get := func(path, ua string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/", "Mozilla/5.0 (X11; Linux x86_64)")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/web/", rec.Header().Get("Location"))

	rec = get("/", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)")
	require.Equal(t, "/web_mobile/", rec.Header().Get("Location"))

	rec = get("/?view=mobile", "")
	require.Equal(t, "/web_mobile/", rec.Header().Get("Location"))
	require.Contains(t, rec.Header().Get("Set-Cookie"), viewCookieName+"=mobile")

	rec = get("/web/app.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "xiangqi")

	rec = get("/api/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
