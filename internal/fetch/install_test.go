package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/ZebulonRouseFrantzich/getnode/internal/install"
	"github.com/ZebulonRouseFrantzich/getnode/internal/testutil"
)

func TestInstallerWithClient(t *testing.T) {
	g := NewWithT(t)

	mirror := testutil.NewMirror(t, testutil.NodeRelease(t, "18.0.0", "linux", "x64"))
	installer, err := install.New(newTestClient(), install.WithTempDir(t.TempDir()))
	g.Expect(err).ToNot(HaveOccurred())

	req := install.Request{
		Version:  "18.0.0",
		Arch:     "x64",
		Platform: "linux",
		Output:   filepath.Join(t.TempDir(), "18.0.0"),
		Fetch:    install.FetchOptions{Mirror: mirror.URL()},
	}

	path, err := installer.Acquire(context.Background(), req)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(filepath.Join(path, "bin", "node")).To(BeARegularFile())

	// A second acquisition never reaches the mirror.
	before := mirror.TotalRequests()
	_, err = installer.Acquire(context.Background(), req)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(mirror.TotalRequests()).To(Equal(before))
}

func TestInstallerWithClientErrors(t *testing.T) {
	release := testutil.NodeRelease(t, "18.0.0", "linux", "x64")

	tests := []struct {
		name    string
		files   map[string][]byte
		version string
		wantErr error
		notErrs []error
	}{
		{
			name:    "unknown_version",
			files:   release,
			version: "99.0.0",
			wantErr: install.ErrNotFound,
		},
		{
			name: "tampered_archive",
			files: map[string][]byte{
				"v18.0.0/" + testArchive: testutil.NodeArchive(t, "18.0.1", "linux", "x64"),
				"v18.0.0/SHASUMS256.txt": release["v18.0.0/SHASUMS256.txt"],
			},
			version: "18.0.0",
			wantErr: install.ErrIntegrity,
		},
		{
			name: "missing_checksums",
			files: map[string][]byte{
				"v18.0.0/" + testArchive: release["v18.0.0/"+testArchive],
			},
			version: "18.0.0",
			wantErr: install.ErrIntegrity,
			notErrs: []error{install.ErrNotFound, install.ErrConnectivity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			mirror := testutil.NewMirror(t, tt.files)
			tempDir := t.TempDir()
			installer, err := install.New(newTestClient(), install.WithTempDir(tempDir))
			g.Expect(err).ToNot(HaveOccurred())

			output := filepath.Join(t.TempDir(), tt.version)
			_, err = installer.Acquire(context.Background(), install.Request{
				Version:  tt.version,
				Arch:     "x64",
				Platform: "linux",
				Output:   output,
				Fetch:    install.FetchOptions{Mirror: mirror.URL()},
			})
			g.Expect(err).To(MatchError(tt.wantErr))
			for _, notErr := range tt.notErrs {
				g.Expect(errors.Is(err, notErr)).To(BeFalse(), "unexpectedly matches %v", notErr)
			}
			g.Expect(output).ToNot(BeAnExistingFile())

			entries, err := os.ReadDir(tempDir)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(entries).To(BeEmpty())
		})
	}
}
