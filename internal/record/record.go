// Package record 自对弈棋谱：每步一行 CSV，文件名以 .zst 结尾时用 zstd 压缩。
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"xiangqi/internal/labels"
	"xiangqi/internal/xiangqi"
)

const CompressedExt = ".zst"

var Header = []string{"game", "ply", "side", "move", "fingerprint", "value", "iterations", "nodes", "ms", "result"}

var ErrBadRecord = errors.New("bad record")

// Ply 一步棋以及给出这步的搜索统计
type Ply struct {
	Side        xiangqi.Side
	Move        xiangqi.Move
	Fingerprint string // 走完之后的局面
	Value       float64
	Iterations  int
	Nodes       int
	Took        time.Duration
}

// Game 结果："red" / "black" / "draw" / "unfinished"
type Game struct {
	ID     int
	Plies  []Ply
	Result string
}

func ResultOf(s *xiangqi.State) string {
	switch {
	case s.Terminal && s.Winner != xiangqi.NoSide:
		return s.Winner.String()
	case s.IsDraw():
		return "draw"
	}
	return "unfinished"
}

// Writer 可被多个对局 goroutine 共享
type Writer struct {
	mu     sync.Mutex
	csv    *csv.Writer
	closer []io.Closer
	header bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Create 创建文件；compress 或扩展名为 .zst 时压缩
func Create(path string, compress bool) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create record file: %w", err)
	}
	if !compress && !strings.HasSuffix(path, CompressedExt) {
		w := NewWriter(f)
		w.closer = []io.Closer{f}
		return w, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	w := NewWriter(enc)
	w.closer = []io.Closer{enc, f}
	return w, nil
}

func (w *Writer) WriteGame(g Game) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.header {
		if err := w.csv.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.header = true
	}
	for i, p := range g.Plies {
		row := []string{
			strconv.Itoa(g.ID),
			strconv.Itoa(i + 1),
			p.Side.String(),
			labels.Label(p.Move.From, p.Move.To),
			p.Fingerprint,
			strconv.FormatFloat(p.Value, 'f', 4, 64),
			strconv.Itoa(p.Iterations),
			strconv.Itoa(p.Nodes),
			strconv.FormatInt(p.Took.Milliseconds(), 10),
			g.Result,
		}
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("write game %d ply %d: %w", g.ID, i+1, err)
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csv.Flush()
	err := w.csv.Error()
	for _, c := range w.closer {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	w.closer = nil
	return err
}

// Open 按扩展名决定是否解压
func Open(path string) ([]Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, CompressedExt) {
		return Read(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	return Read(dec)
}

// Read 按 game 列分组，保持出现顺序
func Read(r io.Reader) ([]Game, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if rows[0][0] == Header[0] {
		rows = rows[1:]
	}

	var games []Game
	pos := make(map[int]int)
	for n, row := range rows {
		id, ply, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		i, ok := pos[id]
		if !ok {
			i = len(games)
			pos[id] = i
			games = append(games, Game{ID: id, Result: row[9]})
		}
		games[i].Plies = append(games[i].Plies, ply)
	}
	return games, nil
}

func parseRow(row []string) (int, Ply, error) {
	var p Ply
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, p, fmt.Errorf("%w: game %q", ErrBadRecord, row[0])
	}
	switch row[2] {
	case "red":
		p.Side = xiangqi.Red
	case "black":
		p.Side = xiangqi.Black
	default:
		return 0, p, fmt.Errorf("%w: side %q", ErrBadRecord, row[2])
	}
	from, to, err := labels.Parse(row[3])
	if err != nil {
		return 0, p, fmt.Errorf("%w: %w", ErrBadRecord, err)
	}
	p.Move = xiangqi.Move{From: from, To: to}
	p.Fingerprint = row[4]

	if p.Value, err = strconv.ParseFloat(row[5], 64); err != nil {
		return 0, p, fmt.Errorf("%w: value %q", ErrBadRecord, row[5])
	}
	if p.Iterations, err = strconv.Atoi(row[6]); err != nil {
		return 0, p, fmt.Errorf("%w: iterations %q", ErrBadRecord, row[6])
	}
	if p.Nodes, err = strconv.Atoi(row[7]); err != nil {
		return 0, p, fmt.Errorf("%w: nodes %q", ErrBadRecord, row[7])
	}
	ms, err := strconv.ParseInt(row[8], 10, 64)
	if err != nil {
		return 0, p, fmt.Errorf("%w: ms %q", ErrBadRecord, row[8])
	}
	p.Took = time.Duration(ms) * time.Millisecond
	return id, p, nil
}
