//go:build !windows

package inject

// No SendKeys interpreter ships outside Windows. A helper can still be
// configured with the helper_command setting.
func defaultHelperCommand() []string {
	return nil
}
