package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.zx2c4.com/wireguard/wgctrl"

	"github.com/mca3/ifcfg/internal/config"
	"github.com/mca3/ifcfg/net/ifctl"
)

func show(args []string) {
	need(args, 1, "show <if>")

	i := iface(args[0])
	idx, _ := i.Index()

	f, err := i.GetFlags()
	if err != nil {
		die("failed to get flags of %s: %v", i, err)
	}

	fmt.Printf("%d: %s: <%s> mtu %d\n", idx, i.Name(), f, i.MTU())

	hw, err := i.GetHardwareAddress()
	if err != nil {
		log.WithError(err).Debug("no hardware address", "name", i.Name())
	}
	if len(hw) > 0 {
		fmt.Printf("\tlink/%s %s\n", i.Type(), hw)
	} else {
		fmt.Printf("\tlink/%s\n", i.Type())
	}

	link := "no carrier"
	if i.HasLink() {
		link = "carrier"
	}
	fmt.Printf("\t%s\n", link)

	if !config.Cfg.Sim {
		showDriver(i)
	}

	addrs, err := i.Addresses()
	if err != nil {
		die("failed to list addresses of %s: %v", i, err)
	}
	for _, v := range addrs {
		family := "inet"
		if v.Address().Is6() {
			family = "inet6"
		}
		fmt.Printf("\t%s %s\n", family, v)
	}

	if !config.Cfg.Sim {
		showWireguard(i)
	}
}

func showWireguard(i *ifctl.Interface) {
	wgc, err := wgctrl.New()
	if err != nil {
		log.WithError(err).Debug("wgctrl unavailable")
		return
	}
	defer wgc.Close()

	dev, err := wgc.Device(i.Name())
	if errors.Is(err, os.ErrNotExist) {
		return
	} else if err != nil {
		log.WithError(err).Debug("failed to query wireguard device", "name", i.Name())
		return
	}

	fmt.Printf("\twireguard %s public key %s listen port %d\n", dev.Type, dev.PublicKey, dev.ListenPort)
	for _, p := range dev.Peers {
		ips := make([]string, 0, len(p.AllowedIPs))
		for _, v := range p.AllowedIPs {
			ips = append(ips, v.String())
		}

		endpoint := "(none)"
		if p.Endpoint != nil {
			endpoint = p.Endpoint.String()
		}

		fmt.Printf("\t\tpeer %s endpoint %s allowed ips %s\n", p.PublicKey, endpoint, strings.Join(ips, ","))
	}
}
