//go:build !linux

package main

// pinWorker is a no-op where sched_setaffinity(2) is unavailable.
func pinWorker(workerID int) error { return nil }
