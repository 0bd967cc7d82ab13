package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/logx"
	"xiangqi/internal/record"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	games := flag.Int("games", 0, "number of games (overrides config)")
	parallel := flag.Int("parallel", 0, "games played at once (overrides config)")
	out := flag.String("out", "", "record file; .zst suffix compresses")
	modelPath := flag.String("model", "", "ONNX model for guided players")
	redMode := flag.String("red", "", "red player mode: rollout or guided")
	blackMode := flag.String("black", "", "black player mode: rollout or guided")
	iterations := flag.Int("iterations", 0, "iterations per move for both players")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	log := logx.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	sp := cfg.SelfPlay
	if *games > 0 {
		sp.Games = *games
	}
	if *parallel > 0 {
		sp.Parallel = *parallel
	}
	if *out != "" {
		sp.Out = *out
	}
	if *redMode != "" {
		sp.Red.Mode = engine.Mode(*redMode)
	}
	if *blackMode != "" {
		sp.Black.Mode = engine.Mode(*blackMode)
	}
	if *iterations > 0 {
		sp.Red.Iterations = *iterations
		sp.Black.Iterations = *iterations
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}

	eng := engine.NewEngine(log)
	defer eng.Close()
	if sp.Red.Mode == engine.ModeGuided || sp.Black.Mode == engine.ModeGuided {
		if err := eng.InitNN(cfg.Model); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize NN")
		}
	}

	w, err := record.Create(sp.Out, sp.Compress)
	if err != nil {
		log.Fatal().Err(err).Msg("open record file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	score, err := run(ctx, eng, sp, w, log)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		log.Error().Err(err).Msg("selfplay stopped")
	}

	a, b := playerName(sp.Red), playerName(sp.Black)
	fmt.Printf("\n=== Final Score (%v) ===\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("A %s: %d\n", a, score.A)
	fmt.Printf("B %s: %d\n", b, score.B)
	fmt.Printf("Draws / unfinished: %d\n", score.Draws)
	fmt.Printf("Records: %s\n", sp.Out)
	if err != nil {
		os.Exit(1)
	}
}

type Score struct {
	A, B, Draws int
}

// run A 用 sp.Red、B 用 sp.Black，逐局交换先后手
func run(ctx context.Context, eng *engine.Engine, sp config.SelfPlay, w *record.Writer, log zerolog.Logger) (Score, error) {
	var (
		mu    sync.Mutex
		score Score
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(sp.Parallel, 1))

	for i := 0; i < sp.Games; i++ {
		id := i + 1
		g.Go(func() error {
			red, black := sp.Red, sp.Black
			swapped := id%2 == 0
			if swapped {
				red, black = black, red
			}
			// 每局换种子，否则同配置的对局完全一样
			red.Seed = seedFor(red.Seed, id, 0)
			black.Seed = seedFor(black.Seed, id, 1)

			rec, err := playGame(ctx, eng, id, red, black, sp.MaxPlies)
			if err != nil {
				return fmt.Errorf("game %d: %w", id, err)
			}
			if err := w.WriteGame(rec); err != nil {
				return err
			}

			mu.Lock()
			switch {
			case rec.Result == "red" && !swapped, rec.Result == "black" && swapped:
				score.A++
			case rec.Result == "red", rec.Result == "black":
				score.B++
			default:
				score.Draws++
			}
			mu.Unlock()

			log.Info().Int("game", id).Int("plies", len(rec.Plies)).Str("result", rec.Result).
				Bool("swapped", swapped).Msg("game finished")
			return nil
		})
	}
	err := g.Wait()
	return score, err
}

func seedFor(base uint64, game, side int) uint64 {
	if base == 0 {
		return 0
	}
	return base + uint64(game)*2 + uint64(side)
}

func playerName(c engine.SearchConfig) string {
	mode := c.Mode
	if mode == "" {
		mode = engine.ModeRollout
	}
	return fmt.Sprintf("%s (%d iterations)", mode, c.Iterations)
}
