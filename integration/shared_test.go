//go:build basic || database

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedFinmapPath holds the path to a shared finmap binary built once for all tests.
	sharedFinmapPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// provincesGeoJSON is a minimal two-province boundary file.
const provincesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Ontario"},
     "geometry": {"type": "Polygon", "coordinates": [[[-95, 42], [-75, 42], [-75, 56], [-95, 56], [-95, 42]]]}},
    {"type": "Feature", "properties": {"name": "Quebec"},
     "geometry": {"type": "Polygon", "coordinates": [[[-79, 45], [-57, 45], [-57, 62], [-79, 62], [-79, 45]]]}}
  ]
}`

// financeCSV holds three years for Ontario and an income-only row for Quebec.
const financeCSV = "Region,Year,Investment,Income\n" +
	"Ontario,2019,120,55\n" +
	"Ontario,2020,135,58\n" +
	"Ontario,2021,150,60\n" +
	"Quebec,2021,,40\n"

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getFinmapBinary returns the path to the finmap binary, building it once if needed.
func getFinmapBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "finmap-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		finmapPath := filepath.Join(tempDir, "finmap")
		buildCmd := exec.Command("go", "build", "-o", finmapPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build finmap: %v", err))
		}

		sharedFinmapPath = finmapPath
	})

	return sharedFinmapPath
}

// writeDataset writes the default-named input files into a fresh directory.
func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "provinces.geojson"), []byte(provincesGeoJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "finance_data.csv"), []byte(financeCSV), 0o644))
	return dir
}

// commandResult captures the outcome of one CLI invocation.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runFinmap runs the finmap binary in dir with extra environment variables.
func runFinmap(t *testing.T, dir string, env []string, args ...string) commandResult {
	t.Helper()
	cmd := exec.Command(getFinmapBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := commandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	if result.ExitCode != 0 {
		t.Logf("Command failed: %s\nStderr: %s", cmd.String(), result.Stderr)
	}
	return result
}
