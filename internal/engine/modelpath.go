package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrModelNotFound = errors.New("model file not found")

const modelsDir = "models"

// resolveModelPath 依次尝试：原路径、models/ 下、可执行文件旁、可执行文件旁的 models/
func resolveModelPath(modelPath string) (string, error) {
	if modelPath == "" {
		return "", fmt.Errorf("%w: empty model path", ErrModelNotFound)
	}

	candidates := []string{modelPath}
	if !filepath.IsAbs(modelPath) {
		base := filepath.Base(modelPath)
		candidates = append(candidates, filepath.Join(modelsDir, base))
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			candidates = append(candidates,
				filepath.Join(exeDir, modelPath),
				filepath.Join(exeDir, base),
				filepath.Join(exeDir, modelsDir, base),
			)
		}
	}

	checked := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		checked = append(checked, abs)
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs, nil
		}
	}

	return "", fmt.Errorf("%w, checked: %s", ErrModelNotFound, strings.Join(checked, ", "))
}
