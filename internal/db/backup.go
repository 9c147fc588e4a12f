package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupService copies the SQLite file into a backup directory on a
// fixed interval and prunes old copies. File-level copy is safe here:
// writes go through a single connection pool and SQLite keeps the main
// file consistent between transactions.
type BackupService struct {
	dbPath   string
	dir      string
	interval time.Duration
	keep     int
	logger   *zerolog.Logger
}

// NewBackupService creates a backup service keeping the newest `keep`
// copies.
func NewBackupService(dbPath, dir string, interval time.Duration, keep int, logger *zerolog.Logger) *BackupService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if keep <= 0 {
		keep = 7
	}
	return &BackupService{
		dbPath:   dbPath,
		dir:      dir,
		interval: interval,
		keep:     keep,
		logger:   logger,
	}
}

// Start backs up immediately and then on every interval until ctx is
// done.
func (s *BackupService) Start(ctx context.Context) {
	if _, err := s.Run(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
		}
	}
}

// Run copies the database file once and prunes old backups. It returns
// the path of the new backup.
func (s *BackupService) Run() (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	dst := filepath.Join(s.dir, name)
	if err := copyFile(s.dbPath, dst); err != nil {
		return "", err
	}
	s.logger.Info().Str("path", dst).Msg("database backup written")

	s.prune()
	return dst, nil
}

// prune removes everything beyond the newest `keep` backups.
func (s *BackupService) prune() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("backup cleanup failed")
		return
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "backup_") {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.keep {
		return
	}
	// Timestamped names sort chronologically.
	sort.Strings(names)
	for _, name := range names[:len(names)-s.keep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("old backup not removed")
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
