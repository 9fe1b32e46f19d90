//go:build !linux

package main

import "github.com/mca3/ifcfg/net/ifctl"

func showDriver(i *ifctl.Interface) {}
