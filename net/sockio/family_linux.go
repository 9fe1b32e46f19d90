package sockio

import "golang.org/x/sys/unix"

// FamilyLink is the link-layer family OpGetHardwareAddr is issued over.
const FamilyLink = unix.AF_PACKET
