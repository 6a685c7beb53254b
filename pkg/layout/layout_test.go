package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/layout"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/types"
)

func TestCoordinateFromPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		root    string
		want    types.Coordinate
		wantErr string
	}{
		{
			name: "with classifier",
			path: "/repo/com/acme/widget-core/1.2.0/widget-core-1.2.0-sources.jar",
			root: "/repo",
			want: types.Coordinate{
				GroupID:    "com.acme",
				ArtifactID: "widget-core",
				Version:    "1.2.0",
				Classifier: "sources",
				Extension:  "jar",
			},
		},
		{
			name: "no classifier",
			path: "/repo/org/x/app/1.0/app-1.0.jar",
			root: "/repo",
			want: types.Coordinate{
				GroupID:    "org.x",
				ArtifactID: "app",
				Version:    "1.0",
				Extension:  "jar",
			},
		},
		{
			name: "multi segment group and compound extension",
			path: "/repo/io/github/acme/tool/2.3.1/tool-2.3.1.tar.gz",
			root: "/repo",
			want: types.Coordinate{
				GroupID:    "io.github.acme",
				ArtifactID: "tool",
				Version:    "2.3.1",
				Extension:  "tar.gz",
			},
		},
		{
			name:    "too shallow",
			path:    "/repo/acme/app-1.0.jar",
			root:    "/repo",
			wantErr: "too shallow",
		},
		{
			name:    "outside the root",
			path:    "/other/com/acme/app/1.0/app-1.0.jar",
			root:    "/repo",
			wantErr: "not under the scan root",
		},
		{
			name:    "filename missing artifact prefix",
			path:    "/repo/com/acme/app/1.0/widget-1.0.jar",
			root:    "/repo",
			wantErr: "does not start with",
		},
		{
			name:    "version not starting with a digit",
			path:    "/repo/com/acme/app/final/app-final.jar",
			root:    "/repo",
			wantErr: "no version starting with a digit",
		},
		{
			name:    "embedded version disagrees with directory",
			path:    "/repo/com/acme/app/1.2.0/app-2.0.0.jar",
			root:    "/repo",
			wantErr: "disagrees",
		},
		{
			name:    "no extension",
			path:    "/repo/com/acme/app/1.0/app-1.0",
			root:    "/repo",
			wantErr: "pattern",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := layout.CoordinateFromPath(tt.path, tt.root)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssetAttrs(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		artifactID     string
		version        string
		wantClassifier string
		wantExtension  string
	}{
		{
			name:          "no classifier",
			filename:      "app-1.0.jar",
			artifactID:    "app",
			version:       "1.0",
			wantExtension: "jar",
		},
		{
			name:           "with classifier",
			filename:       "app-1.0-sources.jar",
			artifactID:     "app",
			version:        "1.0",
			wantClassifier: "sources",
			wantExtension:  "jar",
		},
		{
			name:          "compound extension",
			filename:      "app-1.0.tar.gz",
			artifactID:    "app",
			version:       "1.0",
			wantExtension: "tar.gz",
		},
		{
			name:          "prefix mismatch falls back to last dot",
			filename:      "readme.txt",
			artifactID:    "app",
			version:       "1.0",
			wantExtension: "txt",
		},
		{
			name:       "no dot at all",
			filename:   "LICENSE",
			artifactID: "app",
			version:    "1.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier, extension := layout.AssetAttrs(tt.filename, tt.artifactID, tt.version)
			assert.Equal(t, tt.wantClassifier, classifier)
			assert.Equal(t, tt.wantExtension, extension)
		})
	}
}

func TestIsChecksum(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"app-1.0.jar.md5", true},
		{"app-1.0.jar.sha1", true},
		{"app-1.0.jar.sha256", true},
		{"app-1.0.jar.sha512", true},
		{"app-1.0.jar.asc", true},
		{"APP-1.0.JAR.SHA1", true},
		{"app-1.0.jar", false},
		{"app-1.0.pom", false},
		{"sha1sums.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, layout.IsChecksum(tt.filename))
		})
	}
}

func TestIsSnapshotDir(t *testing.T) {
	assert.True(t, layout.IsSnapshotDir("/repo/org/x/app/1.0-SNAPSHOT"))
	assert.False(t, layout.IsSnapshotDir("/repo/org/x/app/1.0"))
	assert.False(t, layout.IsSnapshotDir("/repo/org/x/app-SNAPSHOT/1.0"))
}
