//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Settings live in the com.cvgo.app defaults domain so the usual macOS
// tooling can inspect them.
const defaultsDomain = "com.cvgo.app"

func defaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, "Library", "Application Support", "cvgo")
	}
	return "cvgo-data"
}

func apiKeyHint() string {
	return " or macOS Keychain (service: cvgo, account: api_token)"
}

type darwinBackend struct {
	domain string
}

func newPlatformBackend() ConfigBackend {
	return &darwinBackend{domain: defaultsDomain}
}

// read shells out to `defaults read`. Exit code 1 means the key does not
// exist in the domain, which is not an error here.
func (b *darwinBackend) read(key string) (string, bool, error) {
	out, err := exec.Command("defaults", "read", b.domain, key).CombinedOutput()
	s := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading default %s: %w (output: %s)", key, err, s)
	}
	return s, true, nil
}

func (b *darwinBackend) GetString(key string) (string, bool, error) {
	return b.read(key)
}

func (b *darwinBackend) GetInt(key string) (int, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("key %s holds %q, not an integer: %w", key, s, err)
	}
	return i, true, nil
}

func (b *darwinBackend) write(key string, args ...string) error {
	cmdArgs := append([]string{"write", b.domain, key}, args...)
	if out, err := exec.Command("defaults", cmdArgs...).CombinedOutput(); err != nil {
		return fmt.Errorf("writing default %s: %w (output: %s)", key, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *darwinBackend) SetString(key, val string) error {
	return b.write(key, "-string", val)
}

func (b *darwinBackend) SetInt(key string, val int) error {
	return b.write(key, "-int", strconv.Itoa(val))
}

func (b *darwinBackend) Delete(key string) error {
	// `defaults delete` fails if the key is absent; treat that as done.
	var exitErr *exec.ExitError
	err := exec.Command("defaults", "delete", b.domain, key).Run()
	if err != nil && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return nil
	}
	return err
}
