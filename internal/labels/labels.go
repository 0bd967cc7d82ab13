// Package labels 走法标签表：策略向量的下标就是标签在表中的位置。
package labels

import (
	"errors"
	"fmt"
	"sync"

	"xiangqi/internal/xiangqi"
)

// Size 标签总数，也是策略向量长度
const Size = 2086

var ErrUnknownLabel = errors.New("unknown move label")

const (
	files = "abcdefghi"
	ranks = "0123456789"
)

var advisorLabels = []string{
	"d7e8", "e8d7", "e8f9", "f9e8", "d0e1", "e1d0", "e1f2", "f2e1",
	"d2e1", "e1d2", "e1f0", "f0e1", "d9e8", "e8d9", "e8f7", "f7e8",
}

var elephantLabels = []string{
	"a2c4", "c4a2", "c0e2", "e2c0", "e2g4", "g4e2", "g0i2", "i2g0",
	"a7c9", "c9a7", "c5e7", "e7c5", "e7g9", "g9e7", "g5i7", "i7g5",
	"a2c0", "c0a2", "c4e2", "e2c4", "e2g0", "g0e2", "g4i2", "i2g4",
	"a7c5", "c5a7", "c9e7", "e7c9", "e7g5", "g5e7", "g9i7", "i7g9",
}

// 马步偏移 (file, rank)
var horseOffsets = [8][2]int{
	{-2, -1}, {-1, -2}, {-2, 1}, {1, -2}, {2, -1}, {-1, 2}, {2, 1}, {1, 2},
}

// Vocabulary 标签 ↔ 下标
type Vocabulary struct {
	labels []string
	index  map[string]int
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default 进程内共享的标签表，只构造一次
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		defaultVocab = build()
	})
	return defaultVocab
}

func build() *Vocabulary {
	out := make([]string, 0, Size)
	for f1 := 0; f1 < xiangqi.Cols; f1++ {
		for r1 := 0; r1 < xiangqi.Rows; r1++ {
			dests := make([][2]int, 0, xiangqi.Cols+xiangqi.Rows+len(horseOffsets))
			for f := 0; f < xiangqi.Cols; f++ {
				dests = append(dests, [2]int{f, r1})
			}
			for r := 0; r < xiangqi.Rows; r++ {
				dests = append(dests, [2]int{f1, r})
			}
			for _, o := range horseOffsets {
				dests = append(dests, [2]int{f1 + o[0], r1 + o[1]})
			}
			for _, d := range dests {
				f2, r2 := d[0], d[1]
				if f2 == f1 && r2 == r1 {
					continue
				}
				if f2 < 0 || f2 >= xiangqi.Cols || r2 < 0 || r2 >= xiangqi.Rows {
					continue
				}
				out = append(out, string([]byte{files[f1], ranks[r1], files[f2], ranks[r2]}))
			}
		}
	}
	out = append(out, advisorLabels...)
	out = append(out, elephantLabels...)

	v := &Vocabulary{labels: out, index: make(map[string]int, len(out))}
	for i, l := range out {
		if _, dup := v.index[l]; !dup {
			v.index[l] = i
		}
	}
	return v
}

func (v *Vocabulary) Size() int { return len(v.labels) }

// Labels 拷贝一份，调用方可随意修改
func (v *Vocabulary) Labels() []string {
	return append([]string(nil), v.labels...)
}

// Index 走法 → 策略向量下标
func (v *Vocabulary) Index(from, to xiangqi.Coord) (int, error) {
	l := Label(from, to)
	i, ok := v.index[l]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownLabel, l)
	}
	return i, nil
}

// At 下标 → 标签
func (v *Vocabulary) At(i int) (string, error) {
	if i < 0 || i >= len(v.labels) {
		return "", fmt.Errorf("%w: index %d", ErrUnknownLabel, i)
	}
	return v.labels[i], nil
}

// Label 列 → a..i，行 → 9-row。(0,4)->(1,4) 即 "e9e8"。
// 坐标不在棋盘上时返回 "????"
func Label(from, to xiangqi.Coord) string {
	if !from.OnBoard() || !to.OnBoard() {
		return "????"
	}
	return string([]byte{
		files[from.Col], ranks[xiangqi.Rows-1-from.Row],
		files[to.Col], ranks[xiangqi.Rows-1-to.Row],
	})
}

// Parse Label 的逆运算，供命令行输入走法
func Parse(label string) (from, to xiangqi.Coord, err error) {
	if len(label) != 4 {
		return from, to, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	parse := func(f, r byte) (xiangqi.Coord, bool) {
		if f < 'a' || f > 'i' || r < '0' || r > '9' {
			return xiangqi.Coord{}, false
		}
		return xiangqi.Coord{Row: xiangqi.Rows - 1 - int(r-'0'), Col: int(f - 'a')}, true
	}
	var ok1, ok2 bool
	from, ok1 = parse(label[0], label[1])
	to, ok2 = parse(label[2], label[3])
	if !ok1 || !ok2 {
		return from, to, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return from, to, nil
}
