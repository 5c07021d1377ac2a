//go:build darwin

package config

import "os/exec"

// keychainExec reads a generic password from the macOS keychain. cvgo stores
// the agency API token under service "cvgo", account "api_token".
func keychainExec(service, account string) ([]byte, error) {
	return exec.Command(
		"security", "find-generic-password",
		"-s", service,
		"-a", account,
		"-w",
	).Output()
}
