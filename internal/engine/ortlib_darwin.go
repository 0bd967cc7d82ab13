//go:build darwin

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const darwinSharedLibraryName = "libonnxruntime.dylib"

func defaultORTLibrary() string { return darwinSharedLibraryName }

func resolveORTSharedLibraryPath(libPath string) (string, error) {
	candidates := make([]string, 0, 3)

	// 显式给出的路径优先
	if libPath != "" && libPath != darwinSharedLibraryName {
		candidates = append(candidates, libPath)
	}

	// 源码目录下运行
	candidates = append(candidates, darwinSharedLibraryName)

	// 可执行文件旁边
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), darwinSharedLibraryName))
	}

	checked := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, p := range candidates {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		checked = append(checked, abs)
		info, err := os.Stat(abs)
		if err == nil && !info.IsDir() {
			return abs, nil
		}
	}

	return "", fmt.Errorf("cannot find %s, checked: %s", darwinSharedLibraryName, strings.Join(checked, ", "))
}

func configureORTSearchPath(libDir string) error {
	return prependPathEnv("DYLD_LIBRARY_PATH", libDir)
}
