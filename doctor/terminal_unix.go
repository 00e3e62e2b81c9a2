//go:build !windows

package doctor

import "os/exec"

// resetTerminal undoes raw mode left behind by clipboard helpers.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}
