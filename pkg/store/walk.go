package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/revtrust/revtrust/pkg/envelope"
)

// ParsedFile is one `.crev` file's path and the envelopes it concatenates.
type ParsedFile struct {
	Path      string
	Envelopes []envelope.Envelope
}

// Walk enumerates every `.crev` file under root, parsing each into its
// envelopes (spec §6: "any .crev file anywhere under the root is a
// concatenation of valid envelopes"). A file that fails to parse is
// reported via onError rather than aborting the walk; pass nil to ignore
// parse failures silently. Each file is opened and closed within a single
// iteration, per spec §5's no-persistent-handles discipline.
func Walk(root string, onError func(path string, err error)) ([]ParsedFile, error) {
	var out []ParsedFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".crev") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if onError != nil {
				onError(path, err)
			}
			return nil
		}
		envs, err := envelope.Parse(data)
		if err != nil {
			if onError != nil {
				onError(path, fmt.Errorf("store: %s: %w", path, err))
			}
			return nil
		}
		out = append(out, ParsedFile{Path: path, Envelopes: envs})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
