package sockio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"
)

// LinuxChannel answers generic requests with ioctl(2) on a datagram socket
// and everything Linux has no ioctl for (statistics and address aliases)
// over rtnetlink.
type LinuxChannel struct {
	cmd Commander
	nl  Netlinker
	log *slog.Logger

	nsName string
	ns     netns.NsHandle

	// handle is only set when the channel opened it itself.
	handle *netlink.Handle
}

// Option configures a LinuxChannel.
type Option func(*LinuxChannel)

// WithCommander replaces the ioctl implementation.
func WithCommander(cmd Commander) Option {
	return func(c *LinuxChannel) {
		c.cmd = cmd
	}
}

// WithNetlinker replaces the rtnetlink implementation.
func WithNetlinker(nl Netlinker) Option {
	return func(c *LinuxChannel) {
		c.nl = nl
	}
}

// WithLogger sets the logger every operation is traced to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *LinuxChannel) {
		if l != nil {
			c.log = l
		}
	}
}

// WithNetNS makes the channel operate on the interfaces of a named network
// namespace (as created by "ip netns add") instead of the caller's own.
func WithNetNS(name string) Option {
	return func(c *LinuxChannel) {
		c.nsName = name
	}
}

// NewLinuxChannel creates a channel for the running kernel.
func NewLinuxChannel(opts ...Option) (*LinuxChannel, error) {
	c := &LinuxChannel{
		cmd: NewLinuxIoctlCommander(),
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ns:  netns.None(),
	}

	for _, o := range opts {
		o(c)
	}

	if c.nsName != "" {
		ns, err := netns.GetFromName(c.nsName)
		if err != nil {
			return nil, fmt.Errorf("failed to open network namespace %q: %w", c.nsName, err)
		}
		c.ns = ns
	}

	if c.nl == nil {
		var h *netlink.Handle
		var err error
		if c.ns.IsOpen() {
			h, err = netlink.NewHandleAt(c.ns, unix.NETLINK_ROUTE)
		} else {
			h, err = netlink.NewHandle(unix.NETLINK_ROUTE)
		}
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open netlink handle: %w", err)
		}
		c.handle = h
		c.nl = h
	}

	return c, nil
}

// Default returns a LinuxChannel for the caller's network namespace.
func Default() (Channel, error) {
	c, err := NewLinuxChannel()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the netlink handle and namespace the channel holds. It does
// not affect connections, which never outlive a single operation.
func (c *LinuxChannel) Close() error {
	if c.handle != nil {
		c.handle.Close()
		c.handle = nil
	}

	if c.ns.IsOpen() {
		err := c.ns.Close()
		c.ns = netns.None()
		return err
	}

	return nil
}

// Open creates a datagram socket of the given family. A link-layer socket
// needs CAP_NET_RAW; without it the connection falls back to FamilyInet,
// which Linux answers SIOCGIFHWADDR on just as well.
func (c *LinuxChannel) Open(family int) (Conn, error) {
	fd, err := c.socket(family)
	if err != nil && family == FamilyLink && isPermission(err) {
		c.log.Debug("link-layer socket unavailable, falling back to inet", "error", err)
		fd, err = c.socket(FamilyInet)
	}
	if err != nil {
		return nil, err
	}

	return &linuxConn{
		fd:  fd,
		cmd: c.cmd,
		nl:  c.nl,
		log: c.log,
	}, nil
}

func (c *LinuxChannel) socket(family int) (int, error) {
	if !c.ns.IsOpen() {
		return unix.Socket(family, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	}

	// Sockets belong to the namespace of the thread that creates them.
	runtime.LockOSThread()

	orig, err := netns.Get()
	if err != nil {
		runtime.UnlockOSThread()
		return -1, fmt.Errorf("failed to get current network namespace: %w", err)
	}
	defer orig.Close()

	if err := netns.Set(c.ns); err != nil {
		runtime.UnlockOSThread()
		return -1, fmt.Errorf("failed to enter network namespace %q: %w", c.nsName, err)
	}

	fd, serr := unix.Socket(family, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)

	if err := netns.Set(orig); err != nil {
		// The thread stays locked so the runtime throws it away instead
		// of reusing it in the wrong namespace.
		if serr == nil {
			unix.Close(fd)
		}
		return -1, fmt.Errorf("failed to restore network namespace: %w", err)
	}
	runtime.UnlockOSThread()

	return fd, serr
}

func isPermission(err error) bool {
	return errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) || errors.Is(err, unix.EAFNOSUPPORT)
}

type linuxConn struct {
	fd  int
	cmd Commander
	nl  Netlinker
	log *slog.Logger
}

func (c *linuxConn) Close() error {
	return unix.Close(c.fd)
}

func (c *linuxConn) Do(op Op, req *IfReq) error {
	switch op {
	case OpNameByIndex:
		return c.ioctl(op, unix.SIOCGIFNAME, req)
	case OpIndexByName:
		return c.ioctl(op, unix.SIOCGIFINDEX, req)
	case OpGetFlags:
		return c.ioctl(op, unix.SIOCGIFFLAGS, req)
	case OpSetFlags:
		return c.ioctl(op, unix.SIOCSIFFLAGS, req)
	case OpGetMTU:
		return c.ioctl(op, unix.SIOCGIFMTU, req)
	case OpSetMTU:
		return c.ioctl(op, unix.SIOCSIFMTU, req)
	case OpGetHardwareAddr:
		return c.ioctl(op, unix.SIOCGIFHWADDR, req)
	case OpGetType:
		// There is no SIOCGIFTYPE; the hardware type rides in the
		// family of ifr_hwaddr.
		if err := c.ioctl(op, unix.SIOCGIFHWADDR, req); err != nil {
			return err
		}
		req.SetValue(uint32(req.Sockaddr().Family()))
		return nil
	case OpGetStats:
		return c.stats(req)
	case OpCountAliases:
		return c.countAliases(req)
	case OpRemoveAlias:
		return c.removeAlias(req)
	}

	return unix.EOPNOTSUPP
}

func (c *linuxConn) DoAlias(op Op, req *AliasReq) error {
	switch op {
	case OpGetAlias:
		return c.getAlias(req)
	case OpAddAlias:
		return c.addAlias(req)
	case OpSetAlias:
		return c.setAlias(req)
	}

	return unix.EOPNOTSUPP
}

func (c *linuxConn) ioctl(op Op, request uintptr, req *IfReq) error {
	errno := c.cmd.Ioctl(uintptr(c.fd), request, unsafe.Pointer(req))
	c.log.Debug("ioctl", "op", op, "name", req.InterfaceName(), "errno", int(errno))
	if errno != 0 {
		return errno
	}
	return nil
}
