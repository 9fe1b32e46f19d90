package testutil

import (
	"os"
	"testing"
)

// RequireKernel skips the test unless IFCFG_KERNEL_TEST is set and the test
// runs as root. Such tests change the configuration of real interfaces.
func RequireKernel(t *testing.T) {
	t.Helper()
	if os.Getenv("IFCFG_KERNEL_TEST") == "" {
		t.Skip("Skipping test: requires IFCFG_KERNEL_TEST environment")
	}
	if os.Geteuid() != 0 {
		t.Skip("Skipping test: requires root")
	}
}
