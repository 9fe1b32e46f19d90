package sockio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Commander issues the raw ioctl. It exists so tests can stand in for the
// kernel.
type Commander interface {
	Ioctl(fd uintptr, request uintptr, arg unsafe.Pointer) unix.Errno
}

type LinuxIoctlCommander struct {
}

func NewLinuxIoctlCommander() Commander {
	return &LinuxIoctlCommander{}
}

func (d LinuxIoctlCommander) Ioctl(fd uintptr, request uintptr, arg unsafe.Pointer) unix.Errno {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, uintptr(arg))
	return errno
}
