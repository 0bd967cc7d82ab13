//go:build windows

package engine

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

var (
	modkernel32 = syscall.NewLazyDLL("kernel32.dll")
	procSetEnv  = modkernel32.NewProc("SetEnvironmentVariableW")
)

// setNativeEnv 同时写 Win32 进程环境：LoadLibrary 找依赖 DLL 时只看那一份
func setNativeEnv(key, value string) error {
	if err := os.Setenv(key, value); err != nil {
		return err
	}
	k, err := syscall.UTF16PtrFromString(key)
	if err != nil {
		return err
	}
	v, err := syscall.UTF16PtrFromString(value)
	if err != nil {
		return err
	}
	if r, _, callErr := procSetEnv.Call(uintptr(unsafe.Pointer(k)), uintptr(unsafe.Pointer(v))); r == 0 {
		return fmt.Errorf("SetEnvironmentVariableW(%s): %w", key, callErr)
	}
	return nil
}
