package main

import (
	"github.com/mca3/ifcfg/internal/logging"
	"github.com/mca3/ifcfg/net/sockio"
)

func openChannel(netns string) (sockio.Channel, func(), error) {
	opts := []sockio.Option{
		sockio.WithLogger(logging.WithComponent("sockio").Logger),
	}
	if netns != "" {
		opts = append(opts, sockio.WithNetNS(netns))
	}

	c, err := sockio.NewLinuxChannel(opts...)
	if err != nil {
		return nil, nil, err
	}

	return c, func() { c.Close() }, nil
}
