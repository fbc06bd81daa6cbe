package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// ArcfileName is the Lume project manifest file name.
const ArcfileName = "Arcfile"

// Arcfile is the parsed project manifest at a workspace root.
type Arcfile struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// LoadArcfile reads and parses the Arcfile at dir/Arcfile. JSON-with-
// comments is accepted (via tidwall/jsonc, the teacher's own tolerant-JSON
// import adapter dependency), matching the expectation that a hand-edited
// project manifest may carry comments.
func LoadArcfile(dir string) (*Arcfile, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ArcfileName))
	if err != nil {
		return nil, fmt.Errorf("arcfile: %w", err)
	}
	clean := jsonc.ToJSON(raw)
	var af Arcfile
	if err := json.Unmarshal(clean, &af); err != nil {
		return nil, fmt.Errorf("arcfile: parsing %s: %w", filepath.Join(dir, ArcfileName), err)
	}
	return &af, nil
}

// FindWorkspaceRoot implements the Arcfile parent-directory walk described
// in spec §4.E/§9: starting at start, walk upward until a directory
// containing an Arcfile is found, or the filesystem root is reached. This
// is an optional recovery path, never a substitute for the LSP
// `workspace_folders` requirement at initialize time.
func FindWorkspaceRoot(start string) (string, bool) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ArcfileName)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
