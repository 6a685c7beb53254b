package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/resolver"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) types.FileEntry {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return types.FileEntry{
		Path: path,
		Dir:  filepath.Dir(path),
		Name: filepath.Base(path),
	}
}

const appPom = `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>org.x</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
</project>`

func TestResolveWithDescriptor(t *testing.T) {
	root := t.TempDir()
	jar := writeFile(t, root, "org/x/app/1.0/app-1.0.jar", "jar")
	descriptor := writeFile(t, root, "org/x/app/1.0/app-1.0.pom", appPom)

	unit, outcome := resolver.New(root).Resolve(types.Group{
		Dir:   jar.Dir,
		Files: []types.FileEntry{jar, descriptor},
	})

	require.NotNil(t, unit)
	assert.Equal(t, types.Succeeded, outcome.Status)
	assert.Equal(t, "org.x", unit.Coordinate.GroupID)
	assert.Equal(t, "app", unit.Coordinate.ArtifactID)
	assert.Equal(t, "1.0", unit.Coordinate.Version)
	require.Len(t, unit.Assets, 2)
	assert.Equal(t, "jar", unit.Assets[0].Extension)
	assert.Equal(t, "pom", unit.Assets[1].Extension)
}

func TestResolvePathFallback(t *testing.T) {
	root := t.TempDir()
	jar := writeFile(t, root, "com/acme/widget-core/1.2.0/widget-core-1.2.0-sources.jar", "jar")

	unit, outcome := resolver.New(root).Resolve(types.Group{
		Dir:   jar.Dir,
		Files: []types.FileEntry{jar},
	})

	require.NotNil(t, unit)
	assert.Equal(t, types.Succeeded, outcome.Status)
	assert.Equal(t, types.Coordinate{
		GroupID:    "com.acme",
		ArtifactID: "widget-core",
		Version:    "1.2.0",
	}, unit.Coordinate)
	require.Len(t, unit.Assets, 1)
	assert.Equal(t, "sources", unit.Assets[0].Classifier)
	assert.Equal(t, "jar", unit.Assets[0].Extension)
}

func TestResolveDescriptorWinsOverPath(t *testing.T) {
	root := t.TempDir()
	// The descriptor disagrees with the directory layout; its values win.
	pom := `<project>
  <groupId>org.meta</groupId>
  <artifactId>app</artifactId>
  <version>9.9</version>
</project>`
	jar := writeFile(t, root, "org/x/app/1.0/app-1.0.jar", "jar")
	descriptor := writeFile(t, root, "org/x/app/1.0/app-1.0.pom", pom)

	unit, outcome := resolver.New(root).Resolve(types.Group{
		Dir:   jar.Dir,
		Files: []types.FileEntry{jar, descriptor},
	})

	require.NotNil(t, unit)
	assert.Equal(t, types.Succeeded, outcome.Status)
	assert.Equal(t, "org.meta", unit.Coordinate.GroupID)
	assert.Equal(t, "9.9", unit.Coordinate.Version)
}

func TestResolvePathFillsDescriptorGaps(t *testing.T) {
	root := t.TempDir()
	// Descriptor misses groupId and version and has no parent; the path
	// convention fills the gaps without overwriting artifactId.
	pom := `<project>
  <artifactId>app</artifactId>
</project>`
	jar := writeFile(t, root, "org/x/app/1.0/app-1.0.jar", "jar")
	descriptor := writeFile(t, root, "org/x/app/1.0/app-1.0.pom", pom)

	unit, outcome := resolver.New(root).Resolve(types.Group{
		Dir:   jar.Dir,
		Files: []types.FileEntry{jar, descriptor},
	})

	require.NotNil(t, unit)
	assert.Equal(t, types.Succeeded, outcome.Status)
	assert.Equal(t, types.Coordinate{
		GroupID:    "org.x",
		ArtifactID: "app",
		Version:    "1.0",
	}, unit.Coordinate)
}

func TestResolvePathStructureError(t *testing.T) {
	root := t.TempDir()
	// Too shallow for the repository convention and no descriptor.
	f := writeFile(t, root, "app-1.0.jar", "jar")

	unit, outcome := resolver.New(root).Resolve(types.Group{
		Dir:   f.Dir,
		Files: []types.FileEntry{f},
	})

	assert.Nil(t, unit)
	assert.Equal(t, types.Skipped, outcome.Status)
	assert.Equal(t, types.CategoryPathStructure, outcome.Category)
}

func TestResolveSnapshotVersion(t *testing.T) {
	root := t.TempDir()
	pom := `<project>
  <groupId>org.x</groupId>
  <artifactId>app</artifactId>
  <version>1.0-SNAPSHOT</version>
</project>`
	jar := writeFile(t, root, "org/x/app/1.0/app-1.0.jar", "jar")
	descriptor := writeFile(t, root, "org/x/app/1.0/app-1.0.pom", pom)

	unit, outcome := resolver.New(root).Resolve(types.Group{
		Dir:   jar.Dir,
		Files: []types.FileEntry{jar, descriptor},
	})

	assert.Nil(t, unit)
	assert.Equal(t, types.Skipped, outcome.Status)
	assert.Equal(t, types.CategorySnapshot, outcome.Category)
}

func TestResolveDropsDuplicatePair(t *testing.T) {
	root := t.TempDir()
	jar := writeFile(t, root, "org/x/app/1.0/app-1.0.jar", "jar")
	// Does not carry the artifactId-version prefix, so it falls back to the
	// same ("", "jar") pair as the main archive.
	other := writeFile(t, root, "org/x/app/1.0/bundled.jar", "jar")
	descriptor := writeFile(t, root, "org/x/app/1.0/app-1.0.pom", appPom)

	unit, outcome := resolver.New(root).Resolve(types.Group{
		Dir:   jar.Dir,
		Files: []types.FileEntry{jar, other, descriptor},
	})

	require.NotNil(t, unit)
	assert.Equal(t, types.Succeeded, outcome.Status)
	require.Len(t, unit.Assets, 2)
	assert.Equal(t, jar.Path, unit.Assets[0].Path)
	assert.Equal(t, descriptor.Path, unit.Assets[1].Path)
}
