package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/corrcal/hack"
)

var (
	unitName = "corrcal.service"
	unitDir  = "/etc/systemd/system"

	// systemctl is swapped out in tests.
	systemctl = func(args ...string) error {
		out, err := exec.Command("systemctl", args...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
		}
		return nil
	}
)

func unitPath() string {
	return filepath.Join(unitDir, unitName)
}

// renderUnit fills the unit template for the given binary and paths.
func renderUnit(exePath, configPath, socketPath string) string {
	tmpl := strings.ReplaceAll(hack.SystemdUnitTemplate, "/path/to/corrcal", exePath)
	tmpl = strings.ReplaceAll(tmpl, "/etc/corrcal.json", configPath)
	tmpl = strings.ReplaceAll(tmpl, "/run/corrcal.sock", socketPath)
	return tmpl
}

func Install(configPath, socketPath string) error {
	// Get the path to the current executable
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}

	err = os.Chmod(exePath, 0755)
	if err != nil {
		return fmt.Errorf("failed to chmod the current executable to 0755: %w", err)
	}

	logrus.Infof("current executable path: %s", exePath)

	path := unitPath()
	logrus.Infof("writing systemd unit to %s", unitDir)

	err = os.MkdirAll(unitDir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", unitDir, err)
	}

	_, err = os.Stat(path)
	if err == nil {
		return fmt.Errorf("%s already exists. Did you forget to uninstall corrcal before installing it again? Run 'sudo corrcal uninstall' first, or remove %s by hand", path, path)
	}

	err = os.WriteFile(path, []byte(renderUnit(exePath, configPath, socketPath)), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logrus.Infof("starting corrcal")

	if err := systemctl("daemon-reload"); err != nil {
		return err
	}
	if err := systemctl("enable", "--now", unitName); err != nil {
		return fmt.Errorf("failed to start %s: %w", unitName, err)
	}

	return nil
}
