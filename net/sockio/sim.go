package sockio

import (
	"net"
	"net/netip"
	"slices"
	"sync"

	"golang.org/x/sys/unix"
)

// Flag bits the simulated kernel gives meaning to. They carry the Linux
// values.
const (
	simFlagUp       = 0x1
	simFlagLoopback = 0x8
	simFlagRunning  = 0x40

	// simSettable are the bits SetFlags may change; the rest describe the
	// hardware or are maintained by the kernel.
	simSettable = 0x1 | 0x4 | 0x20 | 0x80 | 0x100 | 0x200 | 0x1000 | 0x2000 | 0x4000 | 0x8000
)

const (
	defaultMinMTU = 68
	defaultMaxMTU = 65535
)

// SimAlias is one address configured on a SimLink.
type SimAlias struct {
	Flags     uint32
	Addr      netip.Addr
	Mask      netip.Addr
	Broadcast netip.Addr
}

// SimLink is one interface of a SimChannel.
type SimLink struct {
	Name  string
	Index uint32

	Flags        uint32
	MTU          uint32
	MinMTU       uint32
	MaxMTU       uint32
	Type         uint16
	HardwareAddr net.HardwareAddr

	// Carrier decides whether the running flag is reported while the link
	// is up.
	Carrier bool

	Stats   Stats
	Aliases []SimAlias
}

func (l *SimLink) flags() uint32 {
	f := l.Flags &^ simFlagRunning
	if f&simFlagUp != 0 && l.Carrier {
		f |= simFlagRunning
	}
	return f
}

func (l *SimLink) mtuRange() (uint32, uint32) {
	lo, hi := l.MinMTU, l.MaxMTU
	if lo == 0 {
		lo = defaultMinMTU
	}
	if hi == 0 {
		hi = defaultMaxMTU
	}
	return lo, hi
}

func (l *SimLink) findAlias(a netip.Addr) int {
	return slices.IndexFunc(l.Aliases, func(s SimAlias) bool {
		return s.Addr == a
	})
}

// SimChannel is an in-memory kernel. It keeps a table of links and answers
// every Op against it the way Linux would, and counts connections so callers
// can check none are leaked.
//
// A SimChannel is safe for concurrent use.
type SimChannel struct {
	mu sync.Mutex

	links     map[string]*SimLink
	nextIndex uint32

	open   int
	opened int
	fail   map[Op]unix.Errno
}

var _ Channel = &SimChannel{}

// NewSimChannel returns an empty simulated kernel.
func NewSimChannel() *SimChannel {
	return &SimChannel{
		links:     make(map[string]*SimLink),
		nextIndex: 1,
		fail:      make(map[Op]unix.Errno),
	}
}

// NewSimHost returns a simulated kernel with a loopback interface "lo" and an
// ethernet interface "eth0", configured like a freshly booted machine.
func NewSimHost() *SimChannel {
	s := NewSimChannel()
	s.AddLink(SimLink{
		Name:    "lo",
		Flags:   simFlagUp | simFlagLoopback,
		MTU:     65536,
		MaxMTU:  65536,
		Type:    HWTypeLoopback,
		Carrier: true,
		Aliases: []SimAlias{{
			Flags: 0x80,
			Addr:  netip.MustParseAddr("127.0.0.1"),
			Mask:  netip.MustParseAddr("255.0.0.0"),
		}},
	})
	s.AddLink(SimLink{
		Name:         "eth0",
		Flags:        0x2 | 0x1000,
		MTU:          1500,
		MaxMTU:       9000,
		Type:         HWTypeEther,
		HardwareAddr: net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01},
		Carrier:      true,
	})
	return s
}

// AddLink adds l and returns its index. A zero Index is assigned the next
// free one.
func (s *SimChannel) AddLink(l SimLink) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.Index == 0 {
		for s.indexTaken(s.nextIndex) {
			s.nextIndex++
		}
		l.Index = s.nextIndex
		s.nextIndex++
	}

	l.Aliases = slices.Clone(l.Aliases)
	s.links[l.Name] = &l
	return l.Index
}

func (s *SimChannel) indexTaken(index uint32) bool {
	for _, l := range s.links {
		if l.Index == index {
			return true
		}
	}
	return false
}

// RemoveLink removes the named link and reports whether it existed.
func (s *SimChannel) RemoveLink(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.links[name]
	delete(s.links, name)
	return ok
}

// Link returns a copy of the named link.
func (s *SimChannel) Link(name string) (SimLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[name]
	if !ok {
		return SimLink{}, false
	}

	cp := *l
	cp.Aliases = slices.Clone(l.Aliases)
	return cp, true
}

// SetCarrier changes whether the named link has a carrier.
func (s *SimChannel) SetCarrier(name string, carrier bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.links[name]; ok {
		l.Carrier = carrier
	}
}

// FailNext makes the next request for op fail with errno.
func (s *SimChannel) FailNext(op Op, errno unix.Errno) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail[op] = errno
}

// OpenConns returns the number of connections currently open.
func (s *SimChannel) OpenConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}

// Opened returns the number of connections ever opened.
func (s *SimChannel) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.opened
}

func (s *SimChannel) Open(family int) (Conn, error) {
	switch family {
	case FamilyInet, FamilyLink, unix.AF_INET6:
	default:
		return nil, unix.EAFNOSUPPORT
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.open++
	s.opened++
	return &simConn{s: s, family: family}, nil
}

type simConn struct {
	s      *SimChannel
	family int
	closed bool
}

func (c *simConn) Close() error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if c.closed {
		return unix.EBADF
	}
	c.closed = true
	c.s.open--
	return nil
}

// begin locks the kernel and consumes an injected failure for op.
func (c *simConn) begin(op Op) error {
	c.s.mu.Lock()

	if c.closed {
		return unix.EBADF
	}
	if errno, ok := c.s.fail[op]; ok {
		delete(c.s.fail, op)
		return errno
	}
	return nil
}

func (c *simConn) link(name string) (*SimLink, error) {
	l, ok := c.s.links[name]
	if !ok {
		return nil, unix.ENODEV
	}
	return l, nil
}

func (c *simConn) Do(op Op, req *IfReq) error {
	err := c.begin(op)
	defer c.s.mu.Unlock()
	if err != nil {
		return err
	}

	if op == OpNameByIndex {
		for _, l := range c.s.links {
			if int32(l.Index) == req.Index() {
				req.SetName(l.Name)
				return nil
			}
		}
		return unix.ENODEV
	}

	l, err := c.link(req.InterfaceName())
	if err != nil {
		return err
	}

	switch op {
	case OpIndexByName:
		req.SetIndex(int32(l.Index))
	case OpGetFlags:
		req.SetFlags(l.flags())
	case OpSetFlags:
		l.Flags = l.Flags&^simSettable | req.Flags()&simSettable
	case OpGetMTU:
		req.SetMTU(l.MTU)
	case OpSetMTU:
		lo, hi := l.mtuRange()
		mtu := req.MTU()
		if mtu < lo || mtu > hi {
			return unix.EINVAL
		}
		l.MTU = mtu
	case OpGetType:
		req.SetValue(uint32(l.Type))
	case OpGetHardwareAddr:
		if c.family != FamilyLink {
			return unix.EOPNOTSUPP
		}
		return req.SetAddr(EncodeHardwareAddr(l.Type, l.HardwareAddr))
	case OpGetStats:
		req.Stats = l.Stats
	case OpCountAliases:
		req.SetValue(uint32(len(l.Aliases)))
	case OpRemoveAlias:
		a, err := DecodeAddr(req.Sockaddr().Bytes())
		if err != nil || !a.IsValid() {
			return unix.EINVAL
		}
		i := l.findAlias(a)
		if i < 0 {
			return unix.EADDRNOTAVAIL
		}
		l.Aliases = slices.Delete(l.Aliases, i, i+1)
	default:
		return unix.EOPNOTSUPP
	}

	return nil
}

func (c *simConn) DoAlias(op Op, req *AliasReq) error {
	err := c.begin(op)
	defer c.s.mu.Unlock()
	if err != nil {
		return err
	}

	l, err := c.link(req.InterfaceName())
	if err != nil {
		return err
	}

	switch op {
	case OpGetAlias:
		if int(req.Index) >= len(l.Aliases) {
			return unix.EINVAL
		}
		a := l.Aliases[req.Index]
		req.Flags = a.Flags
		_ = req.Addr.Set(EncodeAddr(a.Addr))
		_ = req.Mask.Set(EncodeAddr(a.Mask))
		_ = req.Broadaddr.Set(EncodeAddr(a.Broadcast))
		return nil
	case OpAddAlias:
		a, err := decodeSimAlias(req)
		if err != nil {
			return err
		}
		if l.findAlias(a.Addr) >= 0 {
			return unix.EEXIST
		}
		l.Aliases = append(l.Aliases, a)
		return nil
	case OpSetAlias:
		a, err := decodeSimAlias(req)
		if err != nil {
			return err
		}
		if len(l.Aliases) == 0 && req.Index == 0 {
			l.Aliases = append(l.Aliases, a)
			return nil
		}
		if int(req.Index) >= len(l.Aliases) {
			return unix.EINVAL
		}
		if i := l.findAlias(a.Addr); i >= 0 && i != int(req.Index) {
			return unix.EEXIST
		}
		l.Aliases[req.Index] = a
		return nil
	}

	return unix.EOPNOTSUPP
}

func decodeSimAlias(req *AliasReq) (SimAlias, error) {
	addr, err := DecodeAddr(req.Addr.Bytes())
	if err != nil || !addr.IsValid() {
		return SimAlias{}, unix.EINVAL
	}

	mask, err := DecodeAddr(req.Mask.Bytes())
	if err != nil {
		return SimAlias{}, unix.EINVAL
	}
	if !mask.IsValid() {
		// Like Linux, a missing mask means a host address.
		mask = fullMask(addr.BitLen())
	} else if mask.BitLen() != addr.BitLen() {
		return SimAlias{}, unix.EINVAL
	} else if _, bits := net.IPMask(mask.AsSlice()).Size(); bits == 0 {
		// Non-contiguous.
		return SimAlias{}, unix.EINVAL
	}

	bcast, err := DecodeAddr(req.Broadaddr.Bytes())
	if err != nil {
		return SimAlias{}, unix.EINVAL
	}

	return SimAlias{
		Flags:     req.Flags,
		Addr:      addr,
		Mask:      mask,
		Broadcast: bcast,
	}, nil
}

func fullMask(bits int) netip.Addr {
	m, _ := netip.AddrFromSlice(net.CIDRMask(bits, bits))
	return m
}
