//go:build !windows

package engine

import "os"

// dlopen 读的就是进程环境，os.Setenv 足够
func setNativeEnv(key, value string) error {
	return os.Setenv(key, value)
}
