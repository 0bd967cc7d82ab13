package mcts

import (
	"bufio"
	"io"
	"strconv"
)

type dumpFrame struct {
	id     NodeID
	prefix string // 子节点要继承的前缀
	branch string // 本行的连接符
	depth  int
}

// Dump 把树写成缩进文本，每行 "score / visits, fingerprint"。
// 显式栈遍历，不递归；maxDepth <= 0 不限深度。
func (t *Tree) Dump(w io.Writer, maxDepth int) error {
	bw := bufio.NewWriter(w)
	stack := []dumpFrame{{id: t.Root()}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.Node(f.id)
		bw.WriteString(f.branch)
		bw.WriteString(strconv.FormatFloat(n.Score, 'g', -1, 64))
		bw.WriteString(" / ")
		bw.WriteString(strconv.Itoa(n.Visits))
		bw.WriteString(", ")
		bw.WriteString(n.State.Encode())
		bw.WriteByte('\n')

		if maxDepth > 0 && f.depth >= maxDepth {
			continue
		}
		kids := n.order
		// 逆序入栈，出栈时保持创建顺序
		for i := len(kids) - 1; i >= 0; i-- {
			last := i == len(kids)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			stack = append(stack, dumpFrame{
				id:     kids[i],
				prefix: f.prefix + next,
				branch: f.prefix + branch,
				depth:  f.depth + 1,
			})
		}
	}
	return bw.Flush()
}
