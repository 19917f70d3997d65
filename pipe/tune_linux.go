//go:build linux

package pipe

import (
	"os"

	"golang.org/x/sys/unix"
)

// tuneKernelBuffer raises the pipe's kernel buffer to at least size bytes
// via F_SETPIPE_SZ. Best-effort: an unprivileged process is capped by
// /proc/sys/fs/pipe-max-size, so failure here is not fatal — it only
// means back-pressure engages sooner than requested.
func tuneKernelBuffer(w *os.File, size int) {
	_, _ = unix.FcntlInt(w.Fd(), unix.F_SETPIPE_SZ, size)
}
