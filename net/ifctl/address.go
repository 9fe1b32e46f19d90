package ifctl

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/mca3/ifcfg/net/sockio"
)

// Address is one address alias of an interface: its position, flags, and
// unicast, mask and broadcast addresses.
//
// The position is only meaningful until the interface's addresses change.
type Address struct {
	index     int
	flags     AddrFlags
	address   netip.Addr
	mask      netip.Addr
	broadcast netip.Addr
}

// NewAddress returns an Address for prefix. IPv4 prefixes shorter than /31
// also get the directed broadcast address.
func NewAddress(prefix netip.Prefix) Address {
	addr := prefix.Addr()
	bits := addr.BitLen()

	a := Address{address: addr}
	if m, ok := netip.AddrFromSlice(net.CIDRMask(prefix.Bits(), bits)); ok {
		a.mask = m
	}

	if addr.Is4() && prefix.Bits() < 31 {
		ip := addr.As4()
		mask := a.mask.As4()
		for j := range ip {
			ip[j] |= ^mask[j]
		}
		a.broadcast = netip.AddrFrom4(ip)
	}

	return a
}

// SetTo replaces a with the address at position index of iface. On failure a
// is left as it was.
func (a *Address) SetTo(iface *Interface, index int) error {
	if index < 0 {
		return &sockio.OpError{Op: sockio.OpGetAlias, Name: iface.name, Err: fmt.Errorf("negative index %d", index)}
	}

	req := sockio.AliasReq{Index: uint32(index)}
	if err := sockio.DoAlias(iface.ch, sockio.OpGetAlias, iface.name, &req); err != nil {
		return err
	}

	addr, err := sockio.DecodeAddr(req.Addr.Bytes())
	if err != nil {
		return err
	}
	mask, err := sockio.DecodeAddr(req.Mask.Bytes())
	if err != nil {
		return err
	}
	bcast, err := sockio.DecodeAddr(req.Broadaddr.Bytes())
	if err != nil {
		return err
	}

	*a = Address{
		index:     index,
		flags:     AddrFlags(req.Flags),
		address:   addr,
		mask:      mask,
		broadcast: bcast,
	}
	return nil
}

func (a *Address) Index() int { return a.index }
func (a *Address) Flags() AddrFlags { return a.flags }
func (a *Address) Address() netip.Addr { return a.address }
func (a *Address) Mask() netip.Addr { return a.mask }
func (a *Address) Broadcast() netip.Addr { return a.broadcast }

// SetIndex sets the position SetAddress replaces.
func (a *Address) SetIndex(index int) { a.index = index }
func (a *Address) SetFlags(flags AddrFlags) { a.flags = flags }
func (a *Address) SetAddress(addr netip.Addr) { a.address = addr }
func (a *Address) SetMask(mask netip.Addr) { a.mask = mask }
func (a *Address) SetBroadcast(bc netip.Addr) { a.broadcast = bc }

// Prefix returns the address with the length of its mask. A mask that is not
// contiguous gives an invalid prefix.
func (a *Address) Prefix() netip.Prefix {
	if !a.mask.IsValid() {
		return netip.PrefixFrom(a.address, a.address.BitLen())
	}

	ones, bits := net.IPMask(a.mask.AsSlice()).Size()
	if bits == 0 || bits != a.address.BitLen() {
		return netip.Prefix{}
	}
	return netip.PrefixFrom(a.address, ones)
}

func (a Address) String() string {
	s := a.address.String()
	if p := a.Prefix(); p.IsValid() {
		s = p.String()
	}
	if a.broadcast.IsValid() {
		s += " brd " + a.broadcast.String()
	}
	if a.flags != 0 {
		s += " " + a.flags.String()
	}
	return s
}

// request encodes a into an alias request record.
func (a *Address) request() (*sockio.AliasReq, error) {
	if a.index < 0 {
		return nil, fmt.Errorf("negative address index %d", a.index)
	}

	req := &sockio.AliasReq{
		Index: uint32(a.index),
		Flags: uint32(a.flags),
	}

	if err := req.Addr.Set(sockio.EncodeAddr(a.address)); err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}
	if err := req.Mask.Set(sockio.EncodeAddr(a.mask)); err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	if err := req.Broadaddr.Set(sockio.EncodeAddr(a.broadcast)); err != nil {
		return nil, fmt.Errorf("failed to encode broadcast address: %w", err)
	}

	return req, nil
}
