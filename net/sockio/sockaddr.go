package sockio

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/sys/unix"
)

// Hardware types reported in the family of ifr_hwaddr.
const (
	HWTypeEther     = 1
	HWTypeIEEE802   = 6
	HWTypeIEEE1394  = 24
	HWTypeLoopback  = 772
	HWTypeIEEE80211 = 801
	HWTypeRadiotap  = 803
)

// EncodeAddr lays a out as a sockaddr_in or sockaddr_in6. An invalid address
// encodes to nothing, which clears the target field.
func EncodeAddr(a netip.Addr) []byte {
	switch {
	case !a.IsValid():
		return nil
	case a.Is4():
		b := make([]byte, SizeofSockaddrInet4)
		binary.NativeEndian.PutUint16(b[0:2], unix.AF_INET)
		ip := a.As4()
		copy(b[4:8], ip[:])
		return b
	default:
		b := make([]byte, SizeofSockaddrInet6)
		binary.NativeEndian.PutUint16(b[0:2], unix.AF_INET6)
		ip := a.As16()
		copy(b[8:24], ip[:])
		return b
	}
}

// DecodeAddr is the inverse of EncodeAddr. AF_UNSPEC decodes to the zero
// netip.Addr.
func DecodeAddr(b []byte) (netip.Addr, error) {
	if len(b) < 2 {
		return netip.Addr{}, nil
	}

	family := binary.NativeEndian.Uint16(b[0:2])
	switch family {
	case unix.AF_UNSPEC:
		return netip.Addr{}, nil
	case unix.AF_INET:
		if len(b) < SizeofSockaddrInet4 {
			return netip.Addr{}, fmt.Errorf("short sockaddr_in: %d bytes", len(b))
		}
		return netip.AddrFrom4([4]byte(b[4:8])), nil
	case unix.AF_INET6:
		if len(b) < SizeofSockaddrInet6 {
			return netip.Addr{}, fmt.Errorf("short sockaddr_in6: %d bytes", len(b))
		}
		return netip.AddrFrom16([16]byte(b[8:24])), nil
	}

	return netip.Addr{}, fmt.Errorf("unsupported address family %d", family)
}

// EncodeHardwareAddr lays addr out the way SIOCGIFHWADDR answers: the
// hardware type in the family slot followed by at most 14 address bytes.
func EncodeHardwareAddr(hwType uint16, addr net.HardwareAddr) []byte {
	b := make([]byte, 16)
	binary.NativeEndian.PutUint16(b[0:2], hwType)
	copy(b[2:], addr)
	return b
}

// DecodeHardwareAddr splits an ifr_hwaddr into its type and address bytes.
// Types with no link-layer address decode to a nil address.
func DecodeHardwareAddr(b []byte) (uint16, net.HardwareAddr) {
	if len(b) < 2 {
		return 0, nil
	}

	hwType := binary.NativeEndian.Uint16(b[0:2])
	n := hwAddrLen(hwType)
	if n == 0 || len(b) < 2+n {
		return hwType, nil
	}

	addr := make(net.HardwareAddr, n)
	copy(addr, b[2:2+n])
	return hwType, addr
}

func hwAddrLen(hwType uint16) int {
	switch hwType {
	case HWTypeEther, HWTypeIEEE802, HWTypeLoopback, HWTypeIEEE80211, HWTypeRadiotap:
		return 6
	case HWTypeIEEE1394:
		return 8
	}
	return 0
}

func sockaddrLen(family uint16, max int) int {
	switch family {
	case unix.AF_UNSPEC:
		return 0
	case unix.AF_INET:
		return SizeofSockaddrInet4
	case unix.AF_INET6:
		return SizeofSockaddrInet6
	}
	return max
}
