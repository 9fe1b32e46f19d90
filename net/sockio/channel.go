// Package sockio implements the interface configuration control channel:
// fixed-size request records, the operation codes that travel with them, and
// the backends that hand them to a kernel.
//
// Every call made through Do or DoAlias opens its own connection and closes it
// before returning, whatever the outcome. Nothing is shared between calls.
package sockio

import "golang.org/x/sys/unix"

// FamilyInet is the family of the connection used for every operation but
// OpGetHardwareAddr.
const FamilyInet = unix.AF_INET

// Conn is one open control connection.
type Conn interface {
	// Do issues a generic request. On success the kernel's answer is left
	// in req.
	Do(op Op, req *IfReq) error

	// DoAlias issues an alias request. On success the kernel's answer is
	// left in req.
	DoAlias(op Op, req *AliasReq) error

	Close() error
}

// Channel opens control connections of a given address family.
type Channel interface {
	Open(family int) (Conn, error)
}

// Do opens a connection of the given family, names the interface in req and
// issues op. The connection is released on every path.
func Do(ch Channel, family int, op Op, name string, req *IfReq) error {
	if op.IsAlias() {
		return &OpError{Op: op, Name: name, Err: unix.EINVAL}
	}

	c, err := ch.Open(family)
	if err != nil {
		return &OpError{Op: op, Name: name, Err: err}
	}
	defer c.Close()

	req.SetName(name)
	if err := c.Do(op, req); err != nil {
		return &OpError{Op: op, Name: name, Err: err}
	}

	return nil
}

// DoAlias is Do for alias requests. The caller fills in the index, flags and
// addresses beforehand and reads back whatever it needs afterwards.
func DoAlias(ch Channel, op Op, name string, req *AliasReq) error {
	if !op.IsAlias() {
		return &OpError{Op: op, Name: name, Err: unix.EINVAL}
	}

	c, err := ch.Open(FamilyInet)
	if err != nil {
		return &OpError{Op: op, Name: name, Err: err}
	}
	defer c.Close()

	req.SetName(name)
	if err := c.DoAlias(op, req); err != nil {
		return &OpError{Op: op, Name: name, Err: err}
	}

	return nil
}
