package sockio

import (
	"bytes"
	"encoding/binary"
	"net"
)

const (
	// IFNAMSIZ is the size of the name field, terminating NUL included.
	IFNAMSIZ = 16

	// SizeofSockaddrStorage is the capacity of every address field.
	SizeofSockaddrStorage = 128

	SizeofSockaddrInet4 = 16
	SizeofSockaddrInet6 = 28

	// sizeofIfreq is how much of an IfReq the kernel reads and writes.
	sizeofIfreq = 40
)

// Stats is the counters record returned by OpGetStats. It is copied as a
// whole and never interpreted by the codec.
type Stats struct {
	RxPackets  uint64
	RxBytes    uint64
	RxErrors   uint64
	RxDropped  uint64
	TxPackets  uint64
	TxBytes    uint64
	TxErrors   uint64
	TxDropped  uint64
	Multicast  uint64
	Collisions uint64
}

// Sockaddr is a fixed-capacity buffer holding one encoded socket address.
type Sockaddr [SizeofSockaddrStorage]byte

// Set copies raw into s using raw's own length. It fails with ErrTooLarge
// rather than truncating.
func (s *Sockaddr) Set(raw []byte) error {
	if len(raw) > len(s) {
		return ErrTooLarge
	}
	n := copy(s[:], raw)
	clear(s[n:])
	return nil
}

// Family returns the address family stored in the first two bytes.
func (s *Sockaddr) Family() uint16 {
	return binary.NativeEndian.Uint16(s[:2])
}

// Bytes returns the encoded address trimmed to the length its family implies.
func (s *Sockaddr) Bytes() []byte {
	return s[:sockaddrLen(s.Family(), len(s))]
}

// IfReq is the generic request record. Its first 40 bytes have the layout of
// the kernel's struct ifreq: the name followed by a 24 byte union, which Data
// extends to the capacity of a full socket address. Stats travels alongside
// for backends that answer OpGetStats.
type IfReq struct {
	Name  [IFNAMSIZ]byte
	Data  [SizeofSockaddrStorage]byte
	Stats Stats
}

// SetName copies name into the record, truncated to IFNAMSIZ-1 bytes and
// NUL padded.
func (r *IfReq) SetName(name string) {
	setName(&r.Name, name)
}

// InterfaceName returns the NUL terminated name held by the record.
func (r *IfReq) InterfaceName() string {
	return nameString(r.Name[:])
}

// Index reads ifr_ifindex.
func (r *IfReq) Index() int32 {
	return int32(binary.NativeEndian.Uint32(r.Data[:4]))
}

func (r *IfReq) SetIndex(index int32) {
	binary.NativeEndian.PutUint32(r.Data[:4], uint32(index))
}

// Flags reads ifr_flags. The kernel field is a short, so only the low 16
// bits survive a round trip.
func (r *IfReq) Flags() uint32 {
	return uint32(binary.NativeEndian.Uint16(r.Data[:2]))
}

func (r *IfReq) SetFlags(flags uint32) {
	binary.NativeEndian.PutUint16(r.Data[:2], uint16(flags))
}

// MTU reads ifr_mtu.
func (r *IfReq) MTU() uint32 {
	return binary.NativeEndian.Uint32(r.Data[:4])
}

func (r *IfReq) SetMTU(mtu uint32) {
	binary.NativeEndian.PutUint32(r.Data[:4], mtu)
}

// Value reads the union as a plain uint32. OpGetType and OpCountAliases
// answer through it.
func (r *IfReq) Value() uint32 {
	return binary.NativeEndian.Uint32(r.Data[:4])
}

func (r *IfReq) SetValue(v uint32) {
	binary.NativeEndian.PutUint32(r.Data[:4], v)
}

// Sockaddr views the union as ifr_addr.
func (r *IfReq) Sockaddr() *Sockaddr {
	return (*Sockaddr)(&r.Data)
}

// SetAddr copies an encoded address into ifr_addr.
func (r *IfReq) SetAddr(raw []byte) error {
	return r.Sockaddr().Set(raw)
}

// HardwareAddr decodes ifr_hwaddr as filled in by OpGetHardwareAddr.
func (r *IfReq) HardwareAddr() (hwType uint16, addr net.HardwareAddr) {
	return DecodeHardwareAddr(r.Data[:2+14])
}

// AliasReq is the address alias request record.
type AliasReq struct {
	Name      [IFNAMSIZ]byte
	Index     uint32
	Flags     uint32
	Addr      Sockaddr
	Mask      Sockaddr
	Broadaddr Sockaddr
}

func (r *AliasReq) SetName(name string) {
	setName(&r.Name, name)
}

func (r *AliasReq) InterfaceName() string {
	return nameString(r.Name[:])
}

func setName(dst *[IFNAMSIZ]byte, name string) {
	n := copy(dst[:IFNAMSIZ-1], name)
	clear(dst[n:])
}

func nameString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
