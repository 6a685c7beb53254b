// Package resolver turns one directory's asset files into a component upload
// unit with a fully resolved coordinate.
package resolver

import (
	"fmt"
	"log/slog"

	"golang.org/x/xerrors"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/hash"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/layout"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/pom"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

type Resolver struct {
	root   string
	logger *slog.Logger
}

func New(root string) *Resolver {
	return &Resolver{
		root:   root,
		logger: slog.Default().With(slog.String("component", "resolver")),
	}
}

// Resolve resolves the coordinate of one group. Descriptor-derived fields
// always win over path-derived ones; the path convention only fills gaps.
// A group whose coordinate stays incomplete, fails the path convention or
// resolves to a snapshot version is skipped whole, never partially uploaded.
// The returned unit is nil when the outcome is a skip.
func (r *Resolver) Resolve(g types.Group) (*types.UploadUnit, types.Outcome) {
	coord := r.coordinate(g)

	if !coord.Complete() {
		fallback, err := layout.CoordinateFromPath(g.Files[0].Path, r.root)
		if err != nil {
			return nil, types.Outcome{
				Status:   types.Skipped,
				Category: types.CategoryPathStructure,
				Message:  xerrors.Errorf("%s: %w", g.Dir, err).Error(),
			}
		}
		if coord.GroupID == "" {
			coord.GroupID = fallback.GroupID
		}
		if coord.ArtifactID == "" {
			coord.ArtifactID = fallback.ArtifactID
		}
		if coord.Version == "" {
			coord.Version = fallback.Version
		}
	}

	if !coord.Complete() {
		return nil, types.Outcome{
			Status:   types.Skipped,
			Category: types.CategoryIncomplete,
			Message:  fmt.Sprintf("%s: groupId=%q artifactId=%q version=%q", g.Dir, coord.GroupID, coord.ArtifactID, coord.Version),
		}
	}

	// The path fallback may produce a snapshot version even when the
	// directory name did not. Snapshot versions never go through the
	// components endpoint.
	if coord.Snapshot() {
		return nil, types.Outcome{
			Status:   types.Skipped,
			Category: types.CategorySnapshot,
			Message:  fmt.Sprintf("%s: version %s is a snapshot", g.Dir, coord.Version),
		}
	}

	unit := &types.UploadUnit{Coordinate: coord}
	seen := make(map[uint64]struct{}, len(g.Files))
	for _, f := range g.Files {
		classifier, extension := layout.AssetAttrs(f.Name, coord.ArtifactID, coord.Version)
		key := hash.Pair(classifier, extension)
		// The service indexes assets by coordinate + classifier + extension
		// and allows at most one per pair.
		if _, ok := seen[key]; ok {
			r.logger.Warn("Dropping duplicate asset",
				slog.String("path", f.Path),
				slog.String("classifier", classifier),
				slog.String("extension", extension),
				slog.String("category", string(types.CategoryDuplicateCoordinate)))
			continue
		}
		seen[key] = struct{}{}
		unit.Assets = append(unit.Assets, types.Asset{
			Path:       f.Path,
			Classifier: classifier,
			Extension:  extension,
		})
	}

	return unit, types.Outcome{Status: types.Succeeded}
}

func (r *Resolver) coordinate(g types.Group) types.Coordinate {
	descriptor := pom.FindDescriptor(g.Files)
	if descriptor == "" {
		return types.Coordinate{}
	}
	prj := pom.Read(descriptor)
	return types.Coordinate{
		GroupID:    prj.GroupID,
		ArtifactID: prj.ArtifactID,
		Version:    prj.Version,
	}
}
