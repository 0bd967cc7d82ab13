package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"xiangqi/internal/engine"
	"xiangqi/internal/labels"
	"xiangqi/internal/mcts"
	"xiangqi/internal/render"
	"xiangqi/internal/xiangqi"
)

const help = `输入走法如 b2e2（列 a-i，行 0-9，红方底线为 0）
  moves  列出全部合法走法
  new    重新开局
  quit   退出`

// session 人机对弈：人走一步，引擎回一步；终局后自动重开
type session struct {
	eng       *engine.Engine
	search    engine.SearchConfig
	human     xiangqi.Side
	renderer  *render.Renderer
	treeDepth int

	state *xiangqi.State
}

func (s *session) run(in io.Reader, out io.Writer) error {
	s.reset(out)
	if err := s.engineTurn(out); err != nil {
		return err
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		cmd := strings.ToLower(strings.TrimSpace(sc.Text()))
		switch cmd {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(out, help)
			continue
		case "new":
			s.reset(out)
			if err := s.engineTurn(out); err != nil {
				return err
			}
			continue
		case "moves":
			for _, m := range s.state.LegalMoves() {
				fmt.Fprint(out, labels.Label(m.From, m.To), " ")
			}
			fmt.Fprintln(out)
			continue
		}

		from, to, err := labels.Parse(cmd)
		if err != nil || !s.state.IsValidMove(from, to) {
			fmt.Fprintf(out, "非法走法: %s（help 查看帮助）\n", cmd)
			continue
		}
		s.state = s.state.ApplyMove(from, to)
		s.show(out)
		if s.gameOver(out) {
			continue
		}
		if err := s.engineTurn(out); err != nil {
			return err
		}
	}
}

func (s *session) reset(out io.Writer) {
	s.state = xiangqi.NewInitialState()
	fmt.Fprintln(out, help)
	s.show(out)
}

// engineTurn 轮到引擎时走一步
func (s *session) engineTurn(out io.Writer) error {
	if s.state.SideToMove == s.human || s.state.Terminal {
		return nil
	}
	res, err := s.eng.Search(s.state, s.search)
	if errors.Is(err, mcts.ErrNoBestChild) || errors.Is(err, xiangqi.ErrNoLegalMoves) {
		fmt.Fprintln(out, "引擎无子可走，重新开局")
		s.reset(out)
		return nil
	}
	if err != nil {
		return fmt.Errorf("engine search: %w", err)
	}
	if s.treeDepth > 0 {
		if err := res.Tree.Dump(out, s.treeDepth); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "引擎: %s  (红方胜率 %.1f%%, %d 节点, %v)\n",
		labels.Label(res.BestMove.From, res.BestMove.To), res.WinProb*100, res.Nodes, res.TimeUsed.Round(time.Millisecond))
	s.state = s.state.ApplyMove(res.BestMove.From, res.BestMove.To)
	s.show(out)
	s.gameOver(out)
	return nil
}

func (s *session) show(out io.Writer) {
	_ = s.renderer.Render(out, s.state)
	fmt.Fprintln(out, render.Status(s.state))
}

// gameOver 吃将才算终局，提示并重开。
// 无吃子步数到限只在状态行显示和棋，对局继续。
func (s *session) gameOver(out io.Writer) bool {
	if !s.state.Terminal {
		return false
	}
	fmt.Fprintln(out, "游戏结束:", render.Status(s.state))
	s.reset(out)
	if err := s.engineTurn(out); err != nil {
		fmt.Fprintln(out, err)
	}
	return true
}
