// Package reliability keeps the local store recoverable: snapshot uploads
// to object storage and periodic maintenance.
package reliability

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const timestampLayout = "2006-01-02-150405"

// Snapshotter produces a consistent copy of a database file
type Snapshotter interface {
	Name() string
	SnapshotTo(ctx context.Context, path string) error
}

// ObjectStore is the bucket surface the backup service needs
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// BackupInfo represents a snapshot stored in the bucket
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum,omitempty"`
}

// BackupService snapshots the store, compresses it and uploads it
type BackupService struct {
	db         Snapshotter
	objects    ObjectStore
	stagingDir string
	prefix     string
	retain     int
	now        func() time.Time
	log        zerolog.Logger
}

// NewBackupService creates a backup service. retain <= 0 keeps every snapshot.
func NewBackupService(db Snapshotter, objects ObjectStore, stagingDir, prefix string, retain int, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:         db,
		objects:    objects,
		stagingDir: stagingDir,
		prefix:     prefix,
		retain:     retain,
		now:        time.Now,
		log:        log.With().Str("service", "backup").Logger(),
	}
}

func (s *BackupService) keyPrefix() string {
	return s.prefix + s.db.Name() + "-"
}

// CreateAndUpload snapshots the database and uploads it as <prefix><name>-<timestamp>.db.gz
func (s *BackupService) CreateAndUpload(ctx context.Context) (*BackupInfo, error) {
	s.log.Info().Msg("Starting store backup")
	startTime := s.now()

	if err := os.MkdirAll(s.stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	timestamp := startTime.UTC()
	base := fmt.Sprintf("%s-%s", s.db.Name(), timestamp.Format(timestampLayout))
	snapshotPath := filepath.Join(s.stagingDir, base+".db")
	archivePath := snapshotPath + ".gz"
	defer os.Remove(snapshotPath)
	defer os.Remove(archivePath)

	if err := s.db.SnapshotTo(ctx, snapshotPath); err != nil {
		return nil, err
	}

	checksum, err := compressFile(snapshotPath, archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	stat, err := archive.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	key := s.prefix + base + ".db.gz"
	if err := s.objects.Upload(ctx, key, archive); err != nil {
		return nil, err
	}

	s.log.Info().
		Dur("duration", s.now().Sub(startTime)).
		Str("key", key).
		Int64("size_bytes", stat.Size()).
		Msg("Store backup uploaded")

	return &BackupInfo{
		Key:       key,
		Timestamp: timestamp,
		SizeBytes: stat.Size(),
		Checksum:  checksum,
	}, nil
}

// compressFile gzips src into dst and returns the sha256 of the raw snapshot
func compressFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	hash := sha256.New()
	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, io.TeeReader(in, hash)); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := out.Sync(); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

// ListBackups returns this database's snapshots, newest first. Keys that do
// not carry a parseable timestamp are skipped.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	prefix := s.keyPrefix()
	objects, err := s.objects.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".db.gz") {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), ".db.gz")
		ts, err := time.Parse(timestampLayout, stamp)
		if err != nil {
			s.log.Warn().Str("key", obj.Key).Msg("Failed to parse timestamp from key")
			continue
		}
		backups = append(backups, BackupInfo{
			Key:       obj.Key,
			Timestamp: ts,
			SizeBytes: obj.SizeBytes,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// Rotate deletes every snapshot beyond the newest retain. A failed delete is
// logged and the rest are still attempted.
func (s *BackupService) Rotate(ctx context.Context) (int, error) {
	if s.retain <= 0 {
		return 0, nil
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= s.retain {
		return 0, nil
	}

	deleted := 0
	for _, backup := range backups[s.retain:] {
		if err := s.objects.Delete(ctx, backup.Key); err != nil {
			s.log.Error().Err(err).Str("key", backup.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")
	return deleted, nil
}

// Run uploads a fresh snapshot and rotates old ones
func (s *BackupService) Run(ctx context.Context) error {
	if _, err := s.CreateAndUpload(ctx); err != nil {
		return err
	}
	_, err := s.Rotate(ctx)
	return err
}
