package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"xiangqi/internal/engine"
	"xiangqi/internal/labels"
	"xiangqi/internal/xiangqi"
)

// TestCase 随机对局中的一个局面，给训练侧核对张量编码和合法走法掩码
type TestCase struct {
	Fingerprint string    `json:"fingerprint"`
	ToMove      int       `json:"to_move"`
	Tensor      []float32 `json:"tensor"`
	Mask        []int8    `json:"mask"` // 长度 labels.Size，合法走法处为 1
}

func main() {
	labelsOut := flag.String("labels", "labels.json", "label vocabulary output")
	casesOut := flag.String("cases", "", "random-game test cases output; empty = skip")
	games := flag.Int("games", 10, "random games for test cases")
	maxPlies := flag.Int("max-plies", 200, "plies per random game")
	seed := flag.Uint64("seed", 0, "RNG seed, 0 = time")
	flag.Parse()

	vocab := labels.Default()
	if err := writeJSON(*labelsOut, vocab.Labels()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d labels to %s\n", vocab.Size(), *labelsOut)

	if *casesOut == "" {
		return
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	cases, err := randomCases(rand.New(rand.NewSource(*seed)), *games, *maxPlies)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := writeJSON(*casesOut, cases); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d test cases from %d random games to %s\n", len(cases), *games, *casesOut)
}

func randomCases(rng *rand.Rand, games, maxPlies int) ([]TestCase, error) {
	vocab := labels.Default()
	var cases []TestCase
	for g := 0; g < games; g++ {
		s := xiangqi.NewInitialState()
		for ply := 0; ply < maxPlies && !s.Terminal && !s.IsDraw(); ply++ {
			moves := s.LegalMoves()
			if len(moves) == 0 {
				break
			}
			mask := make([]int8, vocab.Size())
			for _, m := range moves {
				idx, err := vocab.Index(m.From, m.To)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", s.Encode(), err)
				}
				mask[idx] = 1
			}
			toMove := 0
			if s.SideToMove == xiangqi.Black {
				toMove = 1
			}
			cases = append(cases, TestCase{
				Fingerprint: s.Encode(),
				ToMove:      toMove,
				Tensor:      engine.NewTensor(s),
				Mask:        mask,
			})

			m := moves[rng.Intn(len(moves))]
			s = s.ApplyMove(m.From, m.To)
		}
	}
	return cases, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
