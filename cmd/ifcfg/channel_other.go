//go:build !linux

package main

import (
	"fmt"

	"github.com/mca3/ifcfg/net/sockio"
)

func openChannel(netns string) (sockio.Channel, func(), error) {
	if netns != "" {
		return nil, nil, fmt.Errorf("network namespaces: %w", sockio.ErrUnsupported)
	}

	c, err := sockio.Default()
	if err != nil {
		return nil, nil, err
	}
	return c, func() {}, nil
}
