//go:build !linux

package pipe

import "os"

// tuneKernelBuffer is a no-op outside Linux: F_SETPIPE_SZ has no portable
// equivalent, so non-Linux platforms fall back to whatever buffer size
// the OS pipe implementation defaults to.
func tuneKernelBuffer(w *os.File, size int) {}
