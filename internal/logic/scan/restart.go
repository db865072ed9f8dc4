package scan

import (
	"fmt"
	"os/exec"

	"github.com/cjeanneret/ScanGo/internal/debug"
)

// SystemRestarter reboots the host. This is the production escalation path
// for a dead USB camera: the checkpoint is already on disk, and the next
// boot's resume loader picks the scan back up after the bus re-enumerates.
type SystemRestarter struct{}

// Restart issues an immediate reboot. Requires passwordless sudo for
// shutdown, which the rig's provisioning sets up.
func (SystemRestarter) Restart() error {
	debug.Warn("Restarting host now")
	out, err := exec.Command("/usr/bin/sudo", "/sbin/shutdown", "-r", "now").CombinedOutput()
	if err != nil {
		return fmt.Errorf("shutdown command: %w (%s)", err, out)
	}
	return nil
}
