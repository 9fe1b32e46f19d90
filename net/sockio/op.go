package sockio

import "fmt"

// Op selects a single interface configuration operation.
type Op uint32

const (
	OpNameByIndex Op = iota + 1
	OpIndexByName
	OpGetFlags
	OpSetFlags
	OpGetMTU
	OpSetMTU
	OpGetType
	OpGetStats
	OpGetHardwareAddr
	OpGetAlias
	OpAddAlias
	OpSetAlias
	OpCountAliases
	OpRemoveAlias
)

var opNames = map[Op]string{
	OpNameByIndex:     "name-by-index",
	OpIndexByName:     "index-by-name",
	OpGetFlags:        "get-flags",
	OpSetFlags:        "set-flags",
	OpGetMTU:          "get-mtu",
	OpSetMTU:          "set-mtu",
	OpGetType:         "get-type",
	OpGetStats:        "get-stats",
	OpGetHardwareAddr: "get-hwaddr",
	OpGetAlias:        "get-alias",
	OpAddAlias:        "add-alias",
	OpSetAlias:        "set-alias",
	OpCountAliases:    "count-aliases",
	OpRemoveAlias:     "remove-alias",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint32(o))
}

// IsAlias reports whether o is issued with an AliasReq rather than an IfReq.
func (o Op) IsAlias() bool {
	switch o {
	case OpGetAlias, OpAddAlias, OpSetAlias:
		return true
	}
	return false
}
