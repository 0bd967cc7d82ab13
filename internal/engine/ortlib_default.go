//go:build !darwin

package engine

import (
	"fmt"
	"path/filepath"
	"runtime"
)

func defaultORTLibrary() string {
	if runtime.GOOS == "windows" {
		return "onnxruntime.dll"
	}
	return "libonnxruntime.so"
}

func resolveORTSharedLibraryPath(libPath string) (string, error) {
	if libPath == "" {
		libPath = defaultORTLibrary()
	}
	absLibPath, err := filepath.Abs(libPath)
	if err != nil {
		return "", fmt.Errorf("onnxruntime shared library %q: %w", libPath, err)
	}
	return absLibPath, nil
}

func configureORTSearchPath(libDir string) error {
	if runtime.GOOS != "linux" {
		return nil
	}
	return prependPathEnv("LD_LIBRARY_PATH", libDir)
}
