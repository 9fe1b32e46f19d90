package ifctl

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/mca3/ifcfg/net/sockio"
)

func TestNewAddress(t *testing.T) {
	tests := []struct {
		prefix string
		mask   string
		bcast  string
	}{
		{"10.0.0.1/8", "255.0.0.0", "10.255.255.255"},
		{"192.168.1.20/24", "255.255.255.0", "192.168.1.255"},
		{"192.168.1.20/30", "255.255.255.252", "192.168.1.23"},
		{"192.168.1.20/31", "255.255.255.254", ""},
		{"192.168.1.20/32", "255.255.255.255", ""},
		{"2001:db8::1/64", "ffff:ffff:ffff:ffff::", ""},
	}

	for _, v := range tests {
		t.Run(v.prefix, func(t *testing.T) {
			p := netip.MustParsePrefix(v.prefix)
			a := NewAddress(p)

			assert.Equal(t, p.Addr(), a.Address())
			assert.Equal(t, netip.MustParseAddr(v.mask), a.Mask())
			if v.bcast == "" {
				assert.False(t, a.Broadcast().IsValid())
			} else {
				assert.Equal(t, netip.MustParseAddr(v.bcast), a.Broadcast())
			}
			assert.Equal(t, p, a.Prefix())
		})
	}
}

func TestAddressPrefix(t *testing.T) {
	var a Address
	assert.False(t, a.Prefix().IsValid())

	a.SetAddress(netip.MustParseAddr("10.0.0.1"))
	assert.Equal(t, netip.MustParsePrefix("10.0.0.1/32"), a.Prefix())

	a.SetMask(netip.MustParseAddr("255.0.255.0"))
	assert.False(t, a.Prefix().IsValid(), "non-contiguous mask")
	assert.Equal(t, "10.0.0.1", a.String())

	a.SetMask(netip.MustParseAddr("ffff::"))
	assert.False(t, a.Prefix().IsValid(), "mask of another family")
}

func TestAddressSetters(t *testing.T) {
	var a Address
	assert.Zero(t, a.Index())
	assert.Zero(t, a.Flags())
	assert.False(t, a.Address().IsValid())
	assert.False(t, a.Mask().IsValid())
	assert.False(t, a.Broadcast().IsValid())

	a.SetIndex(2)
	a.SetFlags(AddrSecondary)
	a.SetAddress(netip.MustParseAddr("172.16.0.1"))
	a.SetMask(netip.MustParseAddr("255.255.0.0"))
	a.SetBroadcast(netip.MustParseAddr("172.16.255.255"))

	assert.Equal(t, 2, a.Index())
	assert.Equal(t, AddrSecondary, a.Flags())
	assert.Equal(t, "172.16.0.1/16 brd 172.16.255.255 secondary", a.String())
}

func TestAddressSetTo(t *testing.T) {
	s := sockio.NewSimHost()
	lo := ByName(s, "lo")

	var a Address
	require.NoError(t, a.SetTo(lo, 0))
	assert.Equal(t, 0, a.Index())
	assert.Equal(t, AddrPermanent, a.Flags())
	assert.Equal(t, netip.MustParsePrefix("127.0.0.1/8"), a.Prefix())
	assert.False(t, a.Broadcast().IsValid())
}

func TestAddressSetToFailureKeepsState(t *testing.T) {
	s := sockio.NewSimHost()
	lo := ByName(s, "lo")

	a := NewAddress(netip.MustParsePrefix("192.0.2.1/24"))
	a.SetIndex(7)
	a.SetFlags(AddrNoDAD)
	want := a

	assert.ErrorIs(t, a.SetTo(lo, 1), unix.EINVAL)
	assert.Equal(t, want, a)

	assert.ErrorIs(t, a.SetTo(ByName(s, "nonexistent0"), 0), unix.ENODEV)
	assert.Equal(t, want, a)

	s.FailNext(sockio.OpGetAlias, unix.EIO)
	assert.ErrorIs(t, a.SetTo(lo, 0), unix.EIO)
	assert.Equal(t, want, a)

	assert.Error(t, a.SetTo(lo, -1))
	assert.Equal(t, want, a)
}
