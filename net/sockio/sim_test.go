package sockio

import (
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func aliasReq(t *testing.T, index uint32, addr, mask, bcast string) *AliasReq {
	t.Helper()

	req := &AliasReq{Index: index}
	for _, f := range []struct {
		dst *Sockaddr
		s   string
	}{{&req.Addr, addr}, {&req.Mask, mask}, {&req.Broadaddr, bcast}} {
		if f.s == "" {
			continue
		}
		require.NoError(t, f.dst.Set(EncodeAddr(netip.MustParseAddr(f.s))))
	}
	return req
}

func TestSimIndexNameResolution(t *testing.T) {
	s := NewSimHost()

	var req IfReq
	require.NoError(t, Do(s, FamilyInet, OpIndexByName, "eth0", &req))
	idx := req.Index()
	assert.Equal(t, int32(2), idx)

	req = IfReq{}
	req.SetIndex(idx)
	require.NoError(t, Do(s, FamilyInet, OpNameByIndex, "", &req))
	assert.Equal(t, "eth0", req.InterfaceName())

	req = IfReq{}
	req.SetIndex(99)
	assert.ErrorIs(t, Do(s, FamilyInet, OpNameByIndex, "", &req), unix.ENODEV)
}

func TestSimAddLinkIndex(t *testing.T) {
	s := NewSimChannel()
	assert.Equal(t, uint32(5), s.AddLink(SimLink{Name: "a", Index: 5}))
	assert.Equal(t, uint32(1), s.AddLink(SimLink{Name: "b"}))
	assert.Equal(t, uint32(2), s.AddLink(SimLink{Name: "c"}))

	assert.True(t, s.RemoveLink("a"))
	assert.False(t, s.RemoveLink("a"))
}

func TestSimFlags(t *testing.T) {
	s := NewSimHost()

	var req IfReq
	require.NoError(t, Do(s, FamilyInet, OpGetFlags, "eth0", &req))
	assert.Zero(t, req.Flags()&simFlagUp)
	assert.Zero(t, req.Flags()&simFlagRunning)

	// Up with carrier reports running; loopback is not settable.
	req.SetFlags(req.Flags() | simFlagUp | simFlagLoopback)
	require.NoError(t, Do(s, FamilyInet, OpSetFlags, "eth0", &req))

	require.NoError(t, Do(s, FamilyInet, OpGetFlags, "eth0", &req))
	assert.NotZero(t, req.Flags()&simFlagUp)
	assert.NotZero(t, req.Flags()&simFlagRunning)
	assert.Zero(t, req.Flags()&simFlagLoopback)

	s.SetCarrier("eth0", false)
	require.NoError(t, Do(s, FamilyInet, OpGetFlags, "eth0", &req))
	assert.Zero(t, req.Flags()&simFlagRunning)
}

func TestSimMTURange(t *testing.T) {
	s := NewSimHost()

	var req IfReq
	req.SetMTU(9000)
	require.NoError(t, Do(s, FamilyInet, OpSetMTU, "eth0", &req))

	req.SetMTU(9001)
	assert.ErrorIs(t, Do(s, FamilyInet, OpSetMTU, "eth0", &req), unix.EINVAL)

	req.SetMTU(10)
	assert.ErrorIs(t, Do(s, FamilyInet, OpSetMTU, "eth0", &req), unix.EINVAL)

	require.NoError(t, Do(s, FamilyInet, OpGetMTU, "eth0", &req))
	assert.Equal(t, uint32(9000), req.MTU())
}

func TestSimHardwareAddrNeedsLinkFamily(t *testing.T) {
	s := NewSimHost()

	var req IfReq
	assert.ErrorIs(t, Do(s, FamilyInet, OpGetHardwareAddr, "eth0", &req), unix.EOPNOTSUPP)

	require.NoError(t, Do(s, FamilyLink, OpGetHardwareAddr, "eth0", &req))
	hwType, addr := req.HardwareAddr()
	assert.Equal(t, uint16(HWTypeEther), hwType)
	assert.Equal(t, "02:00:5e:10:00:01", addr.String())
}

func TestSimOpenFamily(t *testing.T) {
	_, err := NewSimChannel().Open(unix.AF_UNIX)
	assert.ErrorIs(t, err, unix.EAFNOSUPPORT)
}

func TestSimAliases(t *testing.T) {
	s := NewSimHost()

	count := func() uint32 {
		var req IfReq
		require.NoError(t, Do(s, FamilyInet, OpCountAliases, "eth0", &req))
		return req.Value()
	}

	assert.Equal(t, uint32(0), count())

	// Set on an empty interface adds the primary alias.
	require.NoError(t, DoAlias(s, OpSetAlias, "eth0", aliasReq(t, 0, "10.0.0.1", "255.255.255.0", "10.0.0.255")))
	require.NoError(t, DoAlias(s, OpAddAlias, "eth0", aliasReq(t, 0, "10.0.1.1", "", "")))
	assert.Equal(t, uint32(2), count())

	assert.ErrorIs(t, DoAlias(s, OpAddAlias, "eth0", aliasReq(t, 0, "10.0.1.1", "", "")), unix.EEXIST)
	assert.ErrorIs(t, DoAlias(s, OpAddAlias, "eth0", aliasReq(t, 0, "10.0.2.1", "ffff::", "")), unix.EINVAL)
	assert.ErrorIs(t, DoAlias(s, OpAddAlias, "eth0", &AliasReq{}), unix.EINVAL)

	// A missing mask is a host mask.
	get := &AliasReq{Index: 1}
	require.NoError(t, DoAlias(s, OpGetAlias, "eth0", get))
	mask, err := DecodeAddr(get.Mask.Bytes())
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("255.255.255.255"), mask)

	// Set replaces in place.
	require.NoError(t, DoAlias(s, OpSetAlias, "eth0", aliasReq(t, 1, "10.0.1.2", "255.255.0.0", "")))
	l, _ := s.Link("eth0")
	require.Len(t, l.Aliases, 2)
	assert.Equal(t, netip.MustParseAddr("10.0.1.2"), l.Aliases[1].Addr)
	assert.ErrorIs(t, DoAlias(s, OpSetAlias, "eth0", aliasReq(t, 1, "10.0.0.1", "", "")), unix.EEXIST)
	assert.ErrorIs(t, DoAlias(s, OpSetAlias, "eth0", aliasReq(t, 5, "10.0.9.1", "", "")), unix.EINVAL)

	var rm IfReq
	require.NoError(t, rm.SetAddr(EncodeAddr(netip.MustParseAddr("10.0.0.1"))))
	require.NoError(t, Do(s, FamilyInet, OpRemoveAlias, "eth0", &rm))
	assert.ErrorIs(t, Do(s, FamilyInet, OpRemoveAlias, "eth0", &rm), unix.EADDRNOTAVAIL)
	assert.Equal(t, uint32(1), count())
}

func TestSimStats(t *testing.T) {
	s := NewSimChannel()
	s.AddLink(SimLink{Name: "eth1", Stats: Stats{RxPackets: 3, TxBytes: 1200}})

	var req IfReq
	require.NoError(t, Do(s, FamilyInet, OpGetStats, "eth1", &req))
	assert.Equal(t, Stats{RxPackets: 3, TxBytes: 1200}, req.Stats)
}

func TestSimCloseTwice(t *testing.T) {
	s := NewSimChannel()
	c, err := s.Open(FamilyInet)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), unix.EBADF)
	assert.ErrorIs(t, c.Do(OpGetFlags, &IfReq{}), unix.EBADF)
	assert.Zero(t, s.OpenConns())
}

func TestSimConcurrent(t *testing.T) {
	s := NewSimHost()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			addr := netip.AddrFrom4([4]byte{10, 1, 0, byte(i + 1)})
			req := &AliasReq{}
			_ = req.Addr.Set(EncodeAddr(addr))
			assert.NoError(t, DoAlias(s, OpAddAlias, "eth0", req))
		}(i)
	}
	wg.Wait()

	l, _ := s.Link("eth0")
	assert.Len(t, l.Aliases, 16)
	assert.Zero(t, s.OpenConns())
}

func TestSimRejectsNonContiguousMask(t *testing.T) {
	s := NewSimHost()

	req := aliasReq(t, 0, "10.9.0.1", "255.0.255.0", "")
	assert.ErrorIs(t, DoAlias(s, OpAddAlias, "eth0", req), unix.EINVAL)
	assert.ErrorIs(t, DoAlias(s, OpSetAlias, "eth0", req), unix.EINVAL)

	var count IfReq
	require.NoError(t, Do(s, FamilyInet, OpCountAliases, "eth0", &count))
	assert.Zero(t, count.Value())
}
