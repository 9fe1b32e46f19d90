// Package ifctl configures existing network interfaces: their flags, MTU,
// hardware details and address aliases.
//
// An Interface is a handle naming a kernel interface, not an owner of it.
// Nothing is cached; every accessor asks the kernel again through a
// sockio.Channel.
package ifctl

import "strconv"

// Flags is the interface flag word, using the Linux IFF_* bit values.
type Flags uint32

const (
	FlagUp           Flags = 1 << iota // administratively up
	FlagBroadcast                      // broadcast address valid
	FlagDebug                          // driver debugging
	FlagLoopback                       // loopback interface
	FlagPointToPoint                   // point-to-point link
	FlagNoTrailers                     // avoid trailers
	FlagRunning                        // operational, carrier present
	FlagNoARP                          // no address resolution
	FlagPromisc                        // receives all packets
	FlagAllMulti                       // receives all multicast packets
	FlagMaster                         // load balancing master
	FlagSlave                          // load balancing slave
	FlagMulticast                      // supports multicast
	FlagPortSel                        // can set media type
	FlagAutoMedia                      // auto media selection
	FlagDynamic                        // addresses are lost when down
)

var flagNames = []string{
	"up",
	"broadcast",
	"debug",
	"loopback",
	"pointtopoint",
	"notrailers",
	"running",
	"noarp",
	"promisc",
	"allmulti",
	"master",
	"slave",
	"multicast",
	"portsel",
	"automedia",
	"dynamic",
}

func (f Flags) String() string {
	s := ""
	for i, name := range flagNames {
		if f&(1<<uint(i)) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		s = "0"
	}
	return s
}

// Type is the link-layer hardware type (ARPHRD_*).
type Type uint32

const (
	TypeNetROM     Type = 0
	TypeEther      Type = 1
	TypeIEEE802    Type = 6
	TypeIEEE1394   Type = 24
	TypeInfiniband Type = 32
	TypePPP        Type = 512
	TypeTunnel     Type = 768
	TypeTunnel6    Type = 769
	TypeLoopback   Type = 772
	TypeSit        Type = 776
	TypeIPGRE      Type = 778
	TypeIEEE80211  Type = 801
	TypeRadiotap   Type = 803
	TypeNone       Type = 65534
	TypeVoid       Type = 65535
)

var typeNames = map[Type]string{
	TypeNetROM:     "netrom",
	TypeEther:      "ether",
	TypeIEEE802:    "ieee802",
	TypeIEEE1394:   "ieee1394",
	TypeInfiniband: "infiniband",
	TypePPP:        "ppp",
	TypeTunnel:     "ipip",
	TypeTunnel6:    "tunnel6",
	TypeLoopback:   "loopback",
	TypeSit:        "sit",
	TypeIPGRE:      "gre",
	TypeIEEE80211:  "ieee80211",
	TypeRadiotap:   "radiotap",
	TypeNone:       "none",
	TypeVoid:       "void",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "type(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// AddrFlags describe an address alias (IFA_F_*).
type AddrFlags uint32

const (
	AddrSecondary   AddrFlags = 1 << iota // not the primary address of its subnet
	AddrNoDAD                             // skip duplicate address detection
	AddrOptimistic                        // optimistic DAD
	AddrDADFailed                         // duplicate address detection failed
	AddrHomeAddress                       // mobile IPv6 home address
	AddrDeprecated                        // preferred lifetime expired
	AddrTentative                         // DAD in progress
	AddrPermanent                         // configured, not learned
)

var addrFlagNames = []string{
	"secondary",
	"nodad",
	"optimistic",
	"dadfailed",
	"home",
	"deprecated",
	"tentative",
	"permanent",
}

func (f AddrFlags) String() string {
	s := ""
	for i, name := range addrFlagNames {
		if f&(1<<uint(i)) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		s = "0"
	}
	return s
}
