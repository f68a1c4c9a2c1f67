//go:build linux

package scheduler

import "golang.org/x/sys/unix"

// pinCPU restricts the calling OS thread to a single CPU. The caller must have
// locked its goroutine to the thread.
func pinCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
