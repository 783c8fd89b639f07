//go:build linux

package shellext

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"
)

const desktopEntryName = "glazier-open.desktop"

const desktopEntry = `[Desktop Entry]
Type=Application
Name=Open with Glazier
Exec=glazier open %f
NoDisplay=true
MimeType=text/plain;
Categories=Utility;TextEditor;
`

func entryPath() string {
	return filepath.Join(xdg.DataHome, "applications", desktopEntryName)
}

func platformRegister() error {
	path := entryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create applications directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(desktopEntry), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}

	// Refresh the desktop database when the tool is present; the entry
	// still works without it after the next session restart.
	if db, err := exec.LookPath("update-desktop-database"); err == nil {
		_ = exec.Command(db, filepath.Dir(path)).Run()
	}
	return nil
}

func platformUnregister() error {
	err := os.Remove(entryPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}
