package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mca3/ifcfg/internal/config"
	"github.com/mca3/ifcfg/internal/logging"
	"github.com/mca3/ifcfg/net/ifctl"
	"github.com/mca3/ifcfg/net/sockio"
)

var (
	ch  sockio.Channel
	log *logging.Logger
)

const usage = `ifcfg [-config file] [-sim] <command>

%s show <if>
	show flags, mtu, type, hardware address, driver and addresses

%s name <index>
	print the name of the interface with the given index

%s index <if>
	print the index of an interface

%s up <if>
%s down <if>
	bring an interface up or down

%s flags <if> [flags]
	print or set the interface flags (hex)

%s mtu <if> [mtu]
	print or set the mtu

%s stats <if>
	print interface counters

%s addr list <if>
%s addr add <if> <prefix> [broadcast]
%s addr set <if> <position> <prefix> [broadcast]
%s addr del <if> <address>
%s addr delat <if> <position>
	manage interface addresses

<if> is an interface name or index.
`

func die(f string, d ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", d...)
	os.Exit(1)
}

// iface resolves an interface argument, which is either a name or an index.
func iface(arg string) *ifctl.Interface {
	if idx, err := strconv.ParseUint(arg, 10, 32); err == nil {
		i, err := ifctl.ByIndex(ch, uint32(idx))
		if err != nil {
			die("no interface with index %d: %v", idx, err)
		}
		return i
	}

	i := ifctl.ByName(ch, arg)
	if !i.Exists() {
		die("interface %s does not exist", arg)
	}
	return i
}

func need(args []string, n int, form string) {
	if len(args) < n {
		die("usage: %s %s", os.Args[0], form)
	}
}

func name(args []string) {
	need(args, 1, "name <index>")

	idx, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		die("supply a valid numeric index")
	}

	i, err := ifctl.ByIndex(ch, uint32(idx))
	if err != nil {
		die("couldn't resolve index %d: %v", idx, err)
	}
	fmt.Println(i.Name())
}

func index(args []string) {
	need(args, 1, "index <if>")

	idx, err := ifctl.ByName(ch, args[0]).Index()
	if err != nil {
		die("couldn't resolve %s: %v", args[0], err)
	}
	fmt.Println(idx)
}

func upDown(up bool, args []string) {
	need(args, 1, "up|down <if>")

	i := iface(args[0])
	if err := i.SetUp(up); err != nil {
		die("failed to change state of %s: %v", i, err)
	}
	log.Info("changed interface state", "name", i.Name(), "up", up)
}

func flags(args []string) {
	need(args, 1, "flags <if> [flags]")

	i := iface(args[0])
	if len(args) == 1 {
		f, err := i.GetFlags()
		if err != nil {
			die("failed to get flags of %s: %v", i, err)
		}
		fmt.Printf("%#x <%s>\n", uint32(f), f)
		return
	}

	v, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 32)
	if err != nil {
		die("supply flags as a hexadecimal number")
	}

	if err := i.SetFlags(ifctl.Flags(v)); err != nil {
		die("failed to set flags of %s: %v", i, err)
	}
	log.Info("set interface flags", "name", i.Name(), "flags", ifctl.Flags(v))
}

func mtu(args []string) {
	need(args, 1, "mtu <if> [mtu]")

	i := iface(args[0])
	if len(args) == 1 {
		m, err := i.GetMTU()
		if err != nil {
			die("failed to get mtu of %s: %v", i, err)
		}
		fmt.Println(m)
		return
	}

	m, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		die("supply a valid mtu")
	}

	if err := i.SetMTU(uint32(m)); err != nil {
		die("failed to set mtu of %s: %v", i, err)
	}
	log.Info("set interface mtu", "name", i.Name(), "mtu", m)
}

func stats(args []string) {
	need(args, 1, "stats <if>")

	i := iface(args[0])

	var st sockio.Stats
	if err := i.GetStats(&st); err != nil {
		die("failed to get stats of %s: %v", i, err)
	}

	fmt.Printf("RX: packets %d bytes %d errors %d dropped %d multicast %d\n",
		st.RxPackets, st.RxBytes, st.RxErrors, st.RxDropped, st.Multicast)
	fmt.Printf("TX: packets %d bytes %d errors %d dropped %d collisions %d\n",
		st.TxPackets, st.TxBytes, st.TxErrors, st.TxDropped, st.Collisions)
}

func setupLogging() {
	lvl, err := logging.ParseLevel(config.Cfg.LogLevel)
	if err != nil {
		die("%v", err)
	}

	logging.SetDefault(logging.New(logging.Config{
		Level:  lvl,
		Output: os.Stderr,
		JSON:   config.Cfg.LogFormat == "json",
	}))
	log = logging.WithComponent("ifcfg")
}

func main() {
	cfgFile := flag.String("config", "", "configuration file")
	sim := flag.Bool("sim", false, "use a simulated kernel")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, strings.ReplaceAll(usage, "%s", os.Args[0]))
	}
	flag.Parse()

	config.ConfigFileOverride = *cfgFile
	if err := config.ReadConfigFile(); err != nil {
		die("failed to read config file: %v", err)
	}
	setupLogging()

	if *sim {
		config.Cfg.Sim = true
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	var closer func()
	if config.Cfg.Sim {
		ch = sockio.NewSimHost()
		closer = func() {}
	} else {
		var err error
		ch, closer, err = openChannel(config.Cfg.NetNS)
		if err != nil {
			die("failed to open control channel: %v", err)
		}
	}
	defer closer()

	switch args[0] {
	case "show", "sh":
		show(args[1:])
	case "name":
		name(args[1:])
	case "index", "idx":
		index(args[1:])
	case "up":
		upDown(true, args[1:])
	case "down":
		upDown(false, args[1:])
	case "flags":
		flags(args[1:])
	case "mtu":
		mtu(args[1:])
	case "stats":
		stats(args[1:])
	case "addr", "address", "a":
		addr(args[1:])
	default:
		flag.Usage()
		closer()
		os.Exit(2)
	}
}
