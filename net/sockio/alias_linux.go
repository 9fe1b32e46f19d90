package sockio

import (
	"errors"
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Aliases are positions in the kernel's address dump for the link, all
// families included, in the order the kernel reports them.

func (c *linuxConn) link(name string) (netlink.Link, error) {
	l, err := c.nl.LinkByName(name)
	if err != nil {
		var nf netlink.LinkNotFoundError
		if errors.As(err, &nf) {
			return nil, unix.ENODEV
		}
		return nil, err
	}
	return l, nil
}

func (c *linuxConn) addrs(name string) (netlink.Link, []netlink.Addr, error) {
	l, err := c.link(name)
	if err != nil {
		return nil, nil, err
	}

	addrs, err := c.nl.AddrList(l, netlink.FAMILY_ALL)
	if err != nil {
		return nil, nil, err
	}

	return l, addrs, nil
}

func (c *linuxConn) stats(req *IfReq) error {
	l, err := c.link(req.InterfaceName())
	if err != nil {
		return err
	}

	s := l.Attrs().Statistics
	if s == nil {
		return unix.ENODATA
	}

	req.Stats = Stats{
		RxPackets:  s.RxPackets,
		RxBytes:    s.RxBytes,
		RxErrors:   s.RxErrors,
		RxDropped:  s.RxDropped,
		TxPackets:  s.TxPackets,
		TxBytes:    s.TxBytes,
		TxErrors:   s.TxErrors,
		TxDropped:  s.TxDropped,
		Multicast:  s.Multicast,
		Collisions: s.Collisions,
	}
	return nil
}

func (c *linuxConn) countAliases(req *IfReq) error {
	_, addrs, err := c.addrs(req.InterfaceName())
	if err != nil {
		return err
	}

	req.SetValue(uint32(len(addrs)))
	c.log.Debug("netlink", "op", OpCountAliases, "name", req.InterfaceName(), "count", len(addrs))
	return nil
}

func (c *linuxConn) removeAlias(req *IfReq) error {
	target, err := DecodeAddr(req.Sockaddr().Bytes())
	if err != nil || !target.IsValid() {
		return unix.EINVAL
	}

	l, addrs, err := c.addrs(req.InterfaceName())
	if err != nil {
		return err
	}

	for i := range addrs {
		if ipAddr(addrs[i].IP) == target {
			c.log.Debug("netlink", "op", OpRemoveAlias, "name", req.InterfaceName(), "addr", target)
			return c.nl.AddrDel(l, &addrs[i])
		}
	}

	return unix.EADDRNOTAVAIL
}

func (c *linuxConn) getAlias(req *AliasReq) error {
	_, addrs, err := c.addrs(req.InterfaceName())
	if err != nil {
		return err
	}

	if int(req.Index) >= len(addrs) {
		return unix.EINVAL
	}

	encodeAlias(&addrs[req.Index], req)
	return nil
}

func (c *linuxConn) addAlias(req *AliasReq) error {
	a, err := decodeAlias(req)
	if err != nil {
		return err
	}

	l, err := c.link(req.InterfaceName())
	if err != nil {
		return err
	}

	c.log.Debug("netlink", "op", OpAddAlias, "name", req.InterfaceName(), "addr", a.IPNet)
	return c.nl.AddrAdd(l, a)
}

// setAlias replaces the alias at req.Index. An interface without any alias
// gets one added. The kernel only replaces in place when both the address
// and the prefix length are unchanged; otherwise the old alias is deleted and
// the new one added, which is not atomic. If that add fails the old alias is
// put back, and if even that fails it is lost.
func (c *linuxConn) setAlias(req *AliasReq) error {
	a, err := decodeAlias(req)
	if err != nil {
		return err
	}

	l, addrs, err := c.addrs(req.InterfaceName())
	if err != nil {
		return err
	}

	c.log.Debug("netlink", "op", OpSetAlias, "name", req.InterfaceName(), "index", req.Index, "addr", a.IPNet)

	if len(addrs) == 0 && req.Index == 0 {
		return c.nl.AddrAdd(l, a)
	}
	if int(req.Index) >= len(addrs) {
		return unix.EINVAL
	}

	old := addrs[req.Index]
	if ipAddr(old.IP) == ipAddr(a.IP) && samePrefixLen(old.Mask, a.Mask) {
		return c.nl.AddrReplace(l, a)
	}

	if err := c.nl.AddrDel(l, &old); err != nil {
		return err
	}
	if err := c.nl.AddrAdd(l, a); err != nil {
		if rerr := c.nl.AddrAdd(l, &old); rerr != nil {
			c.log.Warn("failed to restore replaced alias", "name", req.InterfaceName(), "addr", old.IPNet, "error", rerr)
		}
		return err
	}
	return nil
}

func samePrefixLen(a, b net.IPMask) bool {
	ao, ab := a.Size()
	bo, bb := b.Size()
	return ao == bo && ab == bb
}

func decodeAlias(req *AliasReq) (*netlink.Addr, error) {
	ip, err := DecodeAddr(req.Addr.Bytes())
	if err != nil || !ip.IsValid() {
		return nil, unix.EINVAL
	}

	mask, err := DecodeAddr(req.Mask.Bytes())
	if err != nil {
		return nil, unix.EINVAL
	}

	ipn := &net.IPNet{IP: net.IP(ip.AsSlice())}
	switch {
	case !mask.IsValid():
		ipn.Mask = net.CIDRMask(ip.BitLen(), ip.BitLen())
	case mask.BitLen() != ip.BitLen():
		return nil, unix.EINVAL
	default:
		ipn.Mask = net.IPMask(mask.AsSlice())
		if _, bits := ipn.Mask.Size(); bits == 0 {
			return nil, unix.EINVAL
		}
	}

	a := &netlink.Addr{
		IPNet: ipn,
		Flags: int(req.Flags),
		Scope: aliasScope(ip),
	}

	bcast, err := DecodeAddr(req.Broadaddr.Bytes())
	if err != nil {
		return nil, unix.EINVAL
	}
	if bcast.IsValid() {
		a.Broadcast = net.IP(bcast.AsSlice())
	}

	return a, nil
}

// aliasScope picks the scope iproute2 would: the kernel refuses loopback
// addresses outside host scope.
func aliasScope(ip netip.Addr) int {
	switch {
	case ip.IsLoopback():
		return unix.RT_SCOPE_HOST
	case ip.IsLinkLocalUnicast():
		return unix.RT_SCOPE_LINK
	}
	return unix.RT_SCOPE_UNIVERSE
}

func encodeAlias(a *netlink.Addr, req *AliasReq) {
	req.Flags = uint32(a.Flags)

	var ip, mask netip.Addr
	if a.IPNet != nil {
		ip = ipAddr(a.IP)
		mask, _ = netip.AddrFromSlice(a.Mask)
	}

	// Encoded IP addresses always fit a Sockaddr.
	_ = req.Addr.Set(EncodeAddr(ip))
	_ = req.Mask.Set(EncodeAddr(mask))
	_ = req.Broadaddr.Set(EncodeAddr(ipAddr(a.Broadcast)))
}

func ipAddr(ip net.IP) netip.Addr {
	a, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}
	}
	return a.Unmap()
}
