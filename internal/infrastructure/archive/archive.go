package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/shared/id"
)

// Extension is the file suffix of a backup.
const Extension = ".tar.zst"

var (
	// ErrNotFound is returned for unknown backup ids.
	ErrNotFound = errors.New("backup not found")
	// ErrUnsafePath is returned for archive entries escaping the destination.
	ErrUnsafePath = errors.New("unsafe path in archive")
)

// Backup describes one archive on disk.
type Backup struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Files     int       `json:"files,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Archiver writes backups of root into dir.
type Archiver struct {
	root   string
	dir    string
	level  zstd.EncoderLevel
	logger *zap.Logger
}

// New creates an archiver for root storing backups in dir.
func New(root, dir string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		root:   filepath.Clean(root),
		dir:    filepath.Clean(dir),
		level:  zstd.SpeedDefault,
		logger: logger.Named("archive"),
	}
}

// Dir returns the backup directory.
func (a *Archiver) Dir() string {
	return a.dir
}

// collect lists the entries below root, relative to it, in lexical order.
func (a *Archiver) collect(ctx context.Context) ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, a.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		if path == a.root {
			return nil
		}
		if d.IsDir() && path == a.dir {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(a.root, path)
		if err != nil {
			return err
		}
		mu.Lock()
		paths = append(paths, rel)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Create writes a new backup of the root directory.
func (a *Archiver) Create(ctx context.Context) (*Backup, error) {
	entries, err := a.collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", a.root, err)
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupID := id.NewBackupID().String()
	final := filepath.Join(a.dir, backupID+Extension)
	tmp := final + ".tmp"

	files, err := a.write(ctx, tmp, entries)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to finalize backup: %w", err)
	}

	b, err := a.stat(backupID)
	if err != nil {
		return nil, err
	}
	b.Files = files
	a.logger.Info("Backup created",
		zap.String("id", b.ID),
		zap.Int("files", files),
		zap.Int64("bytes", b.Size))
	return b, nil
}

func (a *Archiver) write(ctx context.Context, path string, entries []string) (int, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create backup: %w", err)
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out, zstd.WithEncoderLevel(a.level))
	if err != nil {
		return 0, err
	}
	tw := tar.NewWriter(zw)

	files := 0
	for _, rel := range entries {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return 0, err
		}
		added, err := a.add(tw, rel)
		if err != nil {
			zw.Close()
			return 0, err
		}
		if added {
			files++
		}
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return files, out.Sync()
}

// add writes one entry. Only directories and regular files are archived.
func (a *Archiver) add(tw *tar.Writer, rel string) (bool, error) {
	path := filepath.Join(a.root, rel)
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return false, nil
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return false, err
	}
	header.Name = filepath.ToSlash(rel)
	if info.IsDir() {
		header.Name += "/"
	}
	if err := tw.WriteHeader(header); err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return false, fmt.Errorf("failed to archive %s: %w", rel, err)
	}
	return true, nil
}

func (a *Archiver) stat(backupID string) (*Backup, error) {
	path := filepath.Join(a.dir, backupID+Extension)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}
	if err != nil {
		return nil, err
	}
	created, err := id.Timestamp(backupID)
	if err != nil {
		created = info.ModTime()
	}
	return &Backup{ID: backupID, Path: path, Size: info.Size(), CreatedAt: created}, nil
}

// List returns the backups in the backup directory, oldest first.
func (a *Archiver) List() ([]*Backup, error) {
	entries, err := os.ReadDir(a.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var out []*Backup
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), Extension)
		if !ok || e.IsDir() || !id.IsValid(name) {
			continue
		}
		b, err := a.stat(name)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes a backup.
func (a *Archiver) Delete(backupID string) error {
	if !id.IsValid(backupID) {
		return fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}
	err := os.Remove(filepath.Join(a.dir, backupID+Extension))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}
	return err
}

// Extract unpacks a backup into dest, which is created if needed. Existing
// files are overwritten. It returns the number of files written.
func (a *Archiver) Extract(ctx context.Context, backupID, dest string) (int, error) {
	if !id.IsValid(backupID) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}
	f, err := os.Open(filepath.Join(a.dir, backupID+Extension))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer zr.Close()
	tr := tar.NewReader(zr)

	files := 0
	for {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return files, fmt.Errorf("failed to read backup %s: %w", backupID, err)
		}

		name := filepath.FromSlash(strings.TrimSuffix(header.Name, "/"))
		if !filepath.IsLocal(name) {
			return files, fmt.Errorf("%w: %q", ErrUnsafePath, header.Name)
		}
		target := filepath.Join(dest, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := extractFile(tr, target, header.FileInfo().Mode().Perm()); err != nil {
				return files, err
			}
			files++
		}
	}

	a.logger.Info("Backup extracted",
		zap.String("id", backupID),
		zap.String("dest", dest),
		zap.Int("files", files))
	return files, nil
}

func extractFile(r io.Reader, target string, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
