// Package backup keeps a timestamped copy of a mapping file before the
// download operation overwrites it, so hand edits are never lost silently.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"scimrename/internal/errors"
)

// Manager handles backup and restoration of the mapping file.
type Manager struct {
	enabled bool
	now     func() time.Time
}

// NewBackupManager creates a Manager. A disabled manager turns every call
// into a no-op.
func NewBackupManager(enabled bool) *Manager {
	return &Manager{
		enabled: enabled,
		now:     time.Now,
	}
}

// BackupFile copies filePath to "<file>.<timestamp>.bak" and returns the
// backup path. It returns "" without error when backups are disabled or the
// file does not exist yet.
func (bm *Manager) BackupFile(filePath string) (string, error) {
	if !bm.enabled {
		return "", nil
	}

	srcInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.NewFileError(filePath, "failed to stat source file", err)
	}

	backupPath := bm.generateBackupPath(filePath)

	srcFile, err := os.Open(filePath)
	if err != nil {
		return "", errors.NewFileError(filePath, "failed to open source file", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(backupPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return "", errors.NewFileError(backupPath, "failed to create backup file", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		_ = os.Remove(backupPath)
		return "", errors.NewFileError(backupPath, "failed to copy file content", err)
	}

	if err := dstFile.Close(); err != nil {
		_ = os.Remove(backupPath)
		return "", errors.NewFileError(backupPath, "failed to close backup file", err)
	}

	return backupPath, nil
}

// RestoreFile overwrites originalPath with the contents of backupPath.
// An empty backupPath means nothing was backed up and is a no-op.
func (bm *Manager) RestoreFile(originalPath, backupPath string) error {
	if backupPath == "" {
		return nil
	}

	srcFile, err := os.Open(backupPath)
	if err != nil {
		return errors.NewFileError(backupPath, "failed to open backup file", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(originalPath)
	if err != nil {
		return errors.NewFileError(originalPath, "failed to create original file", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.NewFileError(originalPath, "failed to restore file content", err)
	}

	return nil
}

func (bm *Manager) generateBackupPath(originalPath string) string {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	timestamp := bm.now().Format("20060102_150405")

	return filepath.Join(dir, fmt.Sprintf("%s.%s.bak", base, timestamp))
}
