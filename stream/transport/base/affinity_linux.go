//go:build linux

package base

import (
	"fmt"
	"golang.org/x/sys/unix"
	"math/bits"
	"runtime"
)

// pinToCPUs locks the calling goroutine to its OS thread and restricts that
// thread to the CPUs set in mask
func pinToCPUs(mask int) error {
	var set unix.CPUSet
	set.Zero()
	for cpu := 0; cpu < bits.UintSize; cpu++ {
		if uint(mask)&(1<<uint(cpu)) != 0 {
			set.Set(cpu)
		}
	}
	if set.Count() == 0 {
		return fmt.Errorf("empty cpu mask")
	}

	runtime.LockOSThread()
	return unix.SchedSetaffinity(0, &set)
}
