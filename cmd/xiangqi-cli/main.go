package main

import (
	"flag"
	"os"

	"github.com/fatih/color"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/logx"
	"xiangqi/internal/render"
	"xiangqi/internal/xiangqi"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	human := flag.String("human", "red", "side you play: red or black")
	mode := flag.String("mode", "", "engine mode: rollout or guided")
	iterations := flag.Int("iterations", 1000, "engine iterations per move")
	modelPath := flag.String("model", "", "ONNX model for guided mode")
	ascii := flag.Bool("ascii", false, "letters instead of Chinese glyphs")
	noColor := flag.Bool("no-color", false, "disable colors")
	tree := flag.Int("tree", 0, "print the engine's search tree to this depth after each move")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	log := logx.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *noColor {
		color.NoColor = true
	}

	sc := cfg.Search
	if *mode != "" {
		sc.Mode = engine.Mode(*mode)
	}
	if *iterations > 0 {
		sc.Iterations = *iterations
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}

	eng := engine.NewEngine(log)
	defer eng.Close()
	if sc.Mode == engine.ModeGuided {
		if err := eng.InitNN(cfg.Model); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize NN")
		}
	}

	side := xiangqi.Red
	if *human == "black" {
		side = xiangqi.Black
	}
	s := &session{
		eng:       eng,
		search:    sc,
		human:     side,
		renderer:  render.New(render.Options{ASCII: *ascii, LastMove: true}),
		treeDepth: *tree,
	}
	if err := s.run(os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("session")
	}
}
