package ifctl

import (
	"fmt"
	"net"

	"github.com/mca3/ifcfg/net/sockio"
)

// Interface is a handle on a kernel network interface, identified by name.
//
// The zero value is not usable; create one with New, ByName or ByIndex.
type Interface struct {
	ch   sockio.Channel
	name string
}

// New returns an Interface that does not name anything yet.
func New(ch sockio.Channel) *Interface {
	return &Interface{ch: ch}
}

// ByName returns an Interface for the given name. It does not check that the
// interface exists.
func ByName(ch sockio.Channel, name string) *Interface {
	i := New(ch)
	i.SetName(name)
	return i
}

// ByIndex returns an Interface for the interface with the given index.
func ByIndex(ch sockio.Channel, index uint32) (*Interface, error) {
	i := New(ch)
	if err := i.SetIndex(index); err != nil {
		return nil, err
	}
	return i, nil
}

// SetName points the handle at another interface name. Names longer than the
// kernel allows are truncated.
func (i *Interface) SetName(name string) {
	if len(name) >= sockio.IFNAMSIZ {
		name = name[:sockio.IFNAMSIZ-1]
	}
	i.name = name
}

// SetIndex points the handle at the interface with the given index. The handle
// is unchanged if no such interface exists.
func (i *Interface) SetIndex(index uint32) error {
	var req sockio.IfReq
	req.SetIndex(int32(index))

	if err := sockio.Do(i.ch, sockio.FamilyInet, sockio.OpNameByIndex, "", &req); err != nil {
		return err
	}

	i.name = req.InterfaceName()
	return nil
}

// Unset clears the name.
func (i *Interface) Unset() {
	i.name = ""
}

// Name returns the name the handle refers to.
func (i *Interface) Name() string {
	return i.name
}

// Index resolves the interface's current index.
func (i *Interface) Index() (uint32, error) {
	var req sockio.IfReq
	if err := i.do(sockio.OpIndexByName, &req); err != nil {
		return 0, err
	}
	return uint32(req.Index()), nil
}

// Exists reports whether the kernel knows an interface by this name.
func (i *Interface) Exists() bool {
	_, err := i.Index()
	return err == nil
}

// GetFlags returns the interface flags.
func (i *Interface) GetFlags() (Flags, error) {
	var req sockio.IfReq
	if err := i.do(sockio.OpGetFlags, &req); err != nil {
		return 0, err
	}
	return Flags(req.Flags()), nil
}

// Flags is GetFlags returning 0 on failure.
func (i *Interface) Flags() Flags {
	f, _ := i.GetFlags()
	return f
}

// GetMTU returns the maximum transfer unit.
func (i *Interface) GetMTU() (uint32, error) {
	var req sockio.IfReq
	if err := i.do(sockio.OpGetMTU, &req); err != nil {
		return 0, err
	}
	return req.MTU(), nil
}

// MTU is GetMTU returning 0 on failure.
func (i *Interface) MTU() uint32 {
	m, _ := i.GetMTU()
	return m
}

// GetType returns the link-layer type.
func (i *Interface) GetType() (Type, error) {
	var req sockio.IfReq
	if err := i.do(sockio.OpGetType, &req); err != nil {
		return 0, err
	}
	return Type(req.Value()), nil
}

// Type is GetType returning 0 on failure.
func (i *Interface) Type() Type {
	t, _ := i.GetType()
	return t
}

// HasLink reports whether the interface is operational.
func (i *Interface) HasLink() bool {
	return i.Flags()&FlagRunning != 0
}

// GetStats fills stats with the interface counters.
func (i *Interface) GetStats(stats *sockio.Stats) error {
	var req sockio.IfReq
	if err := i.do(sockio.OpGetStats, &req); err != nil {
		return err
	}
	*stats = req.Stats
	return nil
}

// SetFlags replaces the interface flags. Bits the kernel maintains itself are
// ignored.
func (i *Interface) SetFlags(flags Flags) error {
	var req sockio.IfReq
	req.SetFlags(uint32(flags))
	return i.do(sockio.OpSetFlags, &req)
}

// SetUp brings the interface up or down, leaving the other flags alone.
func (i *Interface) SetUp(up bool) error {
	f, err := i.GetFlags()
	if err != nil {
		return err
	}

	if up {
		f |= FlagUp
	} else {
		f &^= FlagUp
	}

	return i.SetFlags(f)
}

// SetMTU changes the maximum transfer unit.
func (i *Interface) SetMTU(mtu uint32) error {
	var req sockio.IfReq
	req.SetMTU(mtu)
	return i.do(sockio.OpSetMTU, &req)
}

// GetAddressCount returns the number of addresses configured on the
// interface.
func (i *Interface) GetAddressCount() (int, error) {
	var req sockio.IfReq
	if err := i.do(sockio.OpCountAliases, &req); err != nil {
		return 0, err
	}
	return int(req.Value()), nil
}

// CountAddresses is GetAddressCount returning 0 on failure.
func (i *Interface) CountAddresses() int {
	n, _ := i.GetAddressCount()
	return n
}

// GetAddressAt fills addr with the address at position index.
func (i *Interface) GetAddressAt(index int, addr *Address) error {
	return addr.SetTo(i, index)
}

// Addresses returns every address configured on the interface.
func (i *Interface) Addresses() ([]Address, error) {
	n, err := i.GetAddressCount()
	if err != nil {
		return nil, err
	}

	addrs := make([]Address, 0, n)
	for j := 0; j < n; j++ {
		var a Address
		if err := a.SetTo(i, j); err != nil {
			return nil, fmt.Errorf("failed to get address %d of %s: %w", j, i.name, err)
		}
		addrs = append(addrs, a)
	}

	return addrs, nil
}

// AddAddress adds addr to the interface.
func (i *Interface) AddAddress(addr *Address) error {
	req, err := addr.request()
	if err != nil {
		return err
	}
	return sockio.DoAlias(i.ch, sockio.OpAddAlias, i.name, req)
}

// SetAddress replaces the address at addr's position, or adds it when the
// interface has no address at all.
func (i *Interface) SetAddress(addr *Address) error {
	req, err := addr.request()
	if err != nil {
		return err
	}
	return sockio.DoAlias(i.ch, sockio.OpSetAlias, i.name, req)
}

// RemoveAddress removes the address equal to addr's unicast address. Mask,
// broadcast and flags are not considered.
func (i *Interface) RemoveAddress(addr *Address) error {
	var req sockio.IfReq
	if err := req.SetAddr(sockio.EncodeAddr(addr.Address())); err != nil {
		return err
	}
	return i.do(sockio.OpRemoveAlias, &req)
}

// RemoveAddressAt removes the address at position index.
//
// This looks the address up and then removes it by value. If someone else
// changes the interface's addresses in between, a different address than the
// one at index may be removed.
func (i *Interface) RemoveAddressAt(index int) error {
	var addr Address
	if err := i.GetAddressAt(index, &addr); err != nil {
		return err
	}
	return i.RemoveAddress(&addr)
}

// GetHardwareAddress returns the link-layer address. Hardware types without
// one, such as tunnels, return a nil address.
func (i *Interface) GetHardwareAddress() (net.HardwareAddr, error) {
	var req sockio.IfReq
	if err := sockio.Do(i.ch, sockio.FamilyLink, sockio.OpGetHardwareAddr, i.name, &req); err != nil {
		return nil, err
	}

	_, addr := req.HardwareAddr()
	return addr, nil
}

func (i *Interface) do(op sockio.Op, req *sockio.IfReq) error {
	return sockio.Do(i.ch, sockio.FamilyInet, op, i.name, req)
}

func (i *Interface) String() string {
	return i.name
}
