//go:build linux

package main

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinWorker locks the calling goroutine to its OS thread and binds that
// thread to one CPU, chosen round-robin from the CPUs the process may use.
// The lock is never released: the thread exits with the goroutine, so the
// narrowed affinity is not handed back to the scheduler.
func pinWorker(workerID int) error {
	runtime.LockOSThread()

	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return err
	}
	n := allowed.Count()
	if n == 0 {
		return nil
	}
	want := workerID % n
	for cpu := 0; cpu < len(allowed)*64; cpu++ {
		if !allowed.IsSet(cpu) {
			continue
		}
		if want == 0 {
			var set unix.CPUSet
			set.Set(cpu)
			return unix.SchedSetaffinity(0, &set)
		}
		want--
	}
	return nil
}
