package main

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"

	"github.com/mca3/ifcfg/net/ifctl"
)

func parseAddress(prefix string, bcast []string) ifctl.Address {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		a, aerr := netip.ParseAddr(prefix)
		if aerr != nil {
			die("supply an address or prefix: %v", err)
		}
		p = netip.PrefixFrom(a, a.BitLen())
	}

	a := ifctl.NewAddress(p)
	if len(bcast) > 0 {
		b, err := netip.ParseAddr(bcast[0])
		if err != nil {
			die("supply a valid broadcast address: %v", err)
		}
		a.SetBroadcast(b)
	}
	return a
}

func parsePosition(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		die("supply a valid address position")
	}
	return n
}

func addrList(i *ifctl.Interface) {
	addrs, err := i.Addresses()
	if err != nil {
		die("failed to list addresses of %s: %v", i, err)
	}

	for _, v := range addrs {
		fmt.Printf("%d: %s\n", v.Index(), v)
	}
}

func addr(args []string) {
	need(args, 2, "addr {list,add,set,del,delat} <if> ...")

	i := iface(args[1])
	rest := args[2:]

	switch args[0] {
	case "list", "ls", "show":
		addrList(i)
	case "add":
		need(rest, 1, "addr add <if> <prefix> [broadcast]")
		a := parseAddress(rest[0], rest[1:])
		if err := i.AddAddress(&a); err != nil {
			die("failed to add %s to %s: %v", a, i, err)
		}
		log.Info("added address", "name", i.Name(), "addr", a.String())
	case "set":
		need(rest, 2, "addr set <if> <position> <prefix> [broadcast]")
		a := parseAddress(rest[1], rest[2:])
		a.SetIndex(parsePosition(rest[0]))
		if err := i.SetAddress(&a); err != nil {
			die("failed to set address %d of %s: %v", a.Index(), i, err)
		}
		log.Info("set address", "name", i.Name(), "position", a.Index(), "addr", a.String())
	case "del", "delete", "rm":
		need(rest, 1, "addr del <if> <address>")
		ip, err := netip.ParseAddr(rest[0])
		if err != nil {
			die("supply a valid address: %v", err)
		}
		var a ifctl.Address
		a.SetAddress(ip)
		if err := i.RemoveAddress(&a); err != nil {
			die("failed to remove %s from %s: %v", ip, i, err)
		}
		log.Info("removed address", "name", i.Name(), "addr", ip)
	case "delat":
		need(rest, 1, "addr delat <if> <position>")
		n := parsePosition(rest[0])
		if err := i.RemoveAddressAt(n); err != nil {
			die("failed to remove address %d from %s: %v", n, i, err)
		}
		log.Info("removed address", "name", i.Name(), "position", n)
	default:
		die("usage: %s addr {list,add,set,del,delat} <if> ...", os.Args[0])
	}
}
