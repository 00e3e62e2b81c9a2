//go:build windows

package inject

const sendKeysScript = `Add-Type -AssemblyName System.Windows.Forms
while ($null -ne ($line = [Console]::In.ReadLine())) {
  [System.Windows.Forms.SendKeys]::SendWait($line)
}`

func defaultHelperCommand() []string {
	return []string{"powershell.exe", "-NoProfile", "-NonInteractive", "-Command", sendKeysScript}
}
