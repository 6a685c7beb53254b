// Package scanner walks the source tree and partitions its files into
// checksum/signature side artifacts, snapshot component members and upload
// candidates.
package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/xerrors"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/fileutil"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/layout"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

type Scanner struct {
	root   string
	format types.Format
	logger *slog.Logger
}

func New(root string, format types.Format) *Scanner {
	return &Scanner{
		root:   root,
		format: format,
		logger: slog.Default().With(slog.String("component", "scanner")),
	}
}

// Scan visits every regular file under the root exactly once. onFile is
// called with each file's classification; emit receives candidate groups.
// For the maven2 format one group holds one directory's asset files and is
// emitted after the walk so that files split across subdirectory boundaries
// by the lexical walk order still land in the right group. For other formats
// each asset file is emitted eagerly as its own group.
func (s *Scanner) Scan(ctx context.Context, onFile func(entry types.FileEntry, class types.FileClass), emit func(types.Group) error) error {
	groups := make(map[string][]types.FileEntry)

	err := fileutil.Walk(s.root, func(path string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := types.FileEntry{
			Path: path,
			Dir:  filepath.Dir(path),
			Name: filepath.Base(path),
		}
		class := s.classify(entry)
		if onFile != nil {
			onFile(entry, class)
		}

		switch class {
		case types.ClassSignature:
			s.logger.Debug("Skipping checksum/signature file", slog.String("path", path))
			return nil
		case types.ClassSnapshotMember:
			s.logger.Debug("Skipping snapshot component member", slog.String("path", path))
			return nil
		}

		if s.format.Maven() {
			groups[entry.Dir] = append(groups[entry.Dir], entry)
			return nil
		}
		return emit(types.Group{Dir: entry.Dir, Files: []types.FileEntry{entry}})
	})
	if err != nil {
		return xerrors.Errorf("scan error: %w", err)
	}

	// Deterministic emission order for the grouped format.
	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	for _, dir := range dirs {
		if err := emit(types.Group{Dir: dir, Files: groups[dir]}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) classify(entry types.FileEntry) types.FileClass {
	if layout.IsChecksum(entry.Name) {
		return types.ClassSignature
	}
	if s.format.Maven() && layout.IsSnapshotDir(entry.Dir) {
		return types.ClassSnapshotMember
	}
	return types.ClassAsset
}

// Analysis summarizes a tree before any upload happens. It is shown to the
// operator together with the confirmation prompt.
type Analysis struct {
	Files         int
	Descriptors   int
	Archives      int
	Checksums     int
	SnapshotFiles int
	ReleaseFiles  int
}

// Analyze pre-scans the tree and tallies file kinds.
func Analyze(root string) (Analysis, error) {
	var a Analysis
	err := fileutil.Walk(root, func(path string, _ fs.DirEntry) error {
		a.Files++
		name := strings.ToLower(filepath.Base(path))
		switch {
		case layout.IsChecksum(name):
			a.Checksums++
			return nil
		case strings.HasSuffix(name, ".pom"):
			a.Descriptors++
		case strings.HasSuffix(name, ".jar"):
			a.Archives++
		default:
			return nil
		}
		if strings.Contains(name, "snapshot") {
			a.SnapshotFiles++
		} else {
			a.ReleaseFiles++
		}
		return nil
	})
	if err != nil {
		return Analysis{}, xerrors.Errorf("analyze error: %w", err)
	}
	return a, nil
}
