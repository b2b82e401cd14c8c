// ABOUTME: Login autostart registration
// ABOUTME: Writes and removes an XDG autostart entry for the current binary
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/keepaudio/keepaudio-go/internal/config"
	"github.com/keepaudio/keepaudio-go/internal/version"
)

const entryName = "keepaudio.desktop"

// EntryPath returns the autostart entry location for the current user.
func EntryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "autostart", entryName), nil
}

// CommandArgs builds the flag list persisted in the entry: only the
// streaming options, never list/install/test flags, so the registered
// command always just plays the tone.
func CommandArgs(cfg config.Stream, backend string) []string {
	args := []string{
		"--freq", strconv.FormatFloat(cfg.FrequencyHz, 'f', -1, 64),
		"--db", strconv.FormatFloat(cfg.LevelDB, 'f', -1, 64),
		"--rate", strconv.Itoa(cfg.SampleRateHz),
		"--channels", strconv.Itoa(cfg.Channels),
		"--frames", strconv.Itoa(cfg.FramesPerBuffer),
		"--buffers", strconv.Itoa(cfg.BufferCount),
		"--encoding", cfg.Encoding.String(),
		"--backend", backend,
	}
	if cfg.Device != config.DefaultDevice {
		args = append(args, "--device", strconv.Itoa(cfg.Device))
	}
	return args
}

// Install writes the autostart entry pointing at the current executable
// with the given arguments, and returns the entry path.
func Install(args []string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot resolve executable path: %w", err)
	}

	path, err := EntryPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("cannot create autostart dir: %w", err)
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Keep the audio output device awake with a near-inaudible tone
Exec=%s
Terminal=false
X-GNOME-Autostart-enabled=true
`, version.Product, strings.Join(append([]string{exe}, args...), " "))

	if err := os.WriteFile(path, []byte(entry), 0o644); err != nil {
		return "", fmt.Errorf("cannot write autostart entry: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path": path,
		"exec": exe,
	}).Info("Autostart entry installed")
	return path, nil
}

// Remove deletes the autostart entry. Removing an entry that does not
// exist is not an error.
func Remove() (string, error) {
	path, err := EntryPath()
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("cannot remove autostart entry: %w", err)
	}

	logrus.WithField("path", path).Info("Autostart entry removed")
	return path, nil
}
