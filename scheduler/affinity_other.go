//go:build !linux

package scheduler

import (
	"errors"
	"runtime"
)

func pinCPU(int) error {
	return errors.New("cpu pinning is not supported on " + runtime.GOOS)
}
