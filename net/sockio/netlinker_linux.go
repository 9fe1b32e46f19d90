package sockio

import "github.com/vishvananda/netlink"

// Netlinker is the part of the rtnetlink API the Linux backend needs. A
// *netlink.Handle satisfies it; tests substitute a mock.
type Netlinker interface {
	LinkByName(name string) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrReplace(link netlink.Link, addr *netlink.Addr) error
	AddrDel(link netlink.Link, addr *netlink.Addr) error
}

var _ Netlinker = &netlink.Handle{}
