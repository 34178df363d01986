package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
)

// unlinkIfExists removes a stale UNIX-domain socket path before binding, the
// same unlink-before-bind step original_source/ipc/unix.c takes to let a
// listener rebind a path left behind by a crashed process. Only regular
// socket files are removed; a real error (e.g. permission denied) propagates.
func unlinkIfExists(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return nil
	}
	return os.Remove(path)
}

func backgroundCtx() context.Context { return context.Background() }

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
