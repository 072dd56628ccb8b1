package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"agenda-cli/internal/logx"
)

// Backup writes a consistent copy of the database to dest. dest must not
// exist yet.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup %s: already exists", dest)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("backup %s: %w", dest, err)
	}
	s.log.Info("backup written", logx.String("path", dest))
	return nil
}
