package workers

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shootflow/internal/platform/models"
)

// ZipGenerator materializes download archives on local disk. The zip holds
// the project's media set plus a manifest; media files are read from the
// project's directory under mediaDir.
type ZipGenerator struct {
	mediaDir  string
	outputDir string
	baseURL   string
}

func NewZipGenerator(mediaDir, outputDir, baseURL string) *ZipGenerator {
	return &ZipGenerator{mediaDir: mediaDir, outputDir: outputDir, baseURL: baseURL}
}

func (g *ZipGenerator) Generate(a *models.DownloadArtifact) (string, error) {
	if a.Project == nil {
		return "", fmt.Errorf("artifact %s has no project loaded", a.ID)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", err
	}

	name := a.ID + ".zip"
	path := filepath.Join(g.outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	manifest, err := zw.Create("manifest.json")
	if err != nil {
		zw.Close()
		return "", err
	}
	if err := json.NewEncoder(manifest).Encode(a.Project); err != nil {
		zw.Close()
		return "", err
	}

	// Media for a project lives flat under <mediaDir>/<project_id>/.
	projectDir := filepath.Join(g.mediaDir, a.ProjectID)
	entries, err := os.ReadDir(projectDir)
	if err != nil && !os.IsNotExist(err) {
		zw.Close()
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := g.addFile(zw, filepath.Join(projectDir, entry.Name()), entry.Name()); err != nil {
			zw.Close()
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		return "", err
	}

	return g.baseURL + "/" + name, nil
}

func (g *ZipGenerator) addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
