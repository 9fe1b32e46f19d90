package main

import (
	"fmt"

	"github.com/safchain/ethtool"

	"github.com/mca3/ifcfg/net/ifctl"
)

func showDriver(i *ifctl.Interface) {
	eth, err := ethtool.NewEthtool()
	if err != nil {
		log.WithError(err).Debug("failed to create ethtool handle")
		return
	}
	defer eth.Close()

	drv, err := eth.DriverName(i.Name())
	if err != nil || drv == "" {
		return
	}

	bus, err := eth.BusInfo(i.Name())
	if err != nil || bus == "" {
		fmt.Printf("\tdriver %s\n", drv)
		return
	}
	fmt.Printf("\tdriver %s bus %s\n", drv, bus)
}
