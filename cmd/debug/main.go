package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"xiangqi/internal/engine"
	"xiangqi/internal/labels"
	"xiangqi/internal/logx"
	"xiangqi/internal/render"
	"xiangqi/internal/xiangqi"
)

func main() {
	fp := flag.String("fp", "", "90-char fingerprint; empty = initial position")
	side := flag.String("side", "red", "side to move: red or black")
	mode := flag.String("mode", "rollout", "rollout or guided")
	iterations := flag.Int("iterations", 200, "simulations")
	seed := flag.Uint64("seed", 1, "RNG seed, 0 = random")
	cutoff := flag.Int("cutoff", 0, "rollout depth cutoff, 0 = none")
	depth := flag.Int("depth", 2, "tree dump depth, 0 = no dump")
	dumpPath := flag.String("dump", "", "write the tree to a file instead of stdout (.zst compresses)")
	modelPath := flag.String("model", "", "ONNX model for guided mode; empty uses a uniform evaluator")
	flag.Parse()

	log := logx.NewLogger("debug")

	s := xiangqi.NewInitialState()
	if *fp != "" {
		toMove := xiangqi.Red
		if strings.EqualFold(*side, "black") {
			toMove = xiangqi.Black
		}
		var err error
		if s, err = xiangqi.Decode(*fp, toMove); err != nil {
			log.Fatal().Err(err).Msg("decode")
		}
	}

	_ = render.New(render.Options{}).Render(os.Stdout, s)
	fmt.Println(render.Status(s))
	fmt.Println("Fingerprint:", s.Encode())
	fmt.Printf("Hash: %016x\n", s.Hash)

	moves := s.LegalMoves()
	fmt.Println("Legal moves:", len(moves))
	for i, m := range moves {
		idx, _ := labels.Default().Index(m.From, m.To)
		fmt.Printf("  %-4s #%-4d", labels.Label(m.From, m.To), idx)
		if i%6 == 5 {
			fmt.Println()
		}
	}
	fmt.Println()

	eng := engine.NewEngine(log)
	defer eng.Close()
	if engine.Mode(*mode) == engine.ModeGuided {
		if *modelPath != "" {
			mc := engine.DefaultModelConfig()
			mc.Path = *modelPath
			if err := eng.InitNN(mc); err != nil {
				log.Fatal().Err(err).Msg("init NN")
			}
		} else {
			eng.SetEvaluator(engine.Uniform(0), 0)
		}
	}

	res, err := eng.Search(s, engine.SearchConfig{
		Mode:          engine.Mode(*mode),
		Iterations:    *iterations,
		Seed:          *seed,
		RolloutCutoff: *cutoff,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("search")
	}
	fmt.Printf("Best: %s  value=%.4f winprob=%.3f nodes=%d time=%v\n",
		labels.Label(res.BestMove.From, res.BestMove.To), res.Value, res.WinProb, res.Nodes, res.TimeUsed)

	if *depth <= 0 {
		return
	}
	if err := dump(res, *dumpPath, *depth); err != nil {
		log.Fatal().Err(err).Msg("dump")
	}
}

func dump(res engine.SearchResult, path string, depth int) error {
	if path == "" {
		return res.Tree.Dump(os.Stdout, depth)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return res.Tree.Dump(f, depth)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if err := res.Tree.Dump(enc, depth); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
