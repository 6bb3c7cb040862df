package loader

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/vdcsim/vdc-go/pkg/uut"
	"gopkg.in/yaml.v3"
)

// ParseScript parses a bench script from YAML bytes.
func ParseScript(data []byte) (*Script, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}
	if len(doc.Content) == 0 {
		return nil, &LoadError{Message: "empty document"}
	}
	root := doc.Content[0]

	var s Script
	if err := root.Decode(&s); err != nil {
		return nil, &LoadError{
			Line:    root.Line,
			Message: "failed to decode script",
			Cause:   err,
		}
	}

	// Record step lines for error reporting.
	if steps := mappingValue(root, "steps"); steps != nil && steps.Kind == yaml.SequenceNode {
		for i, n := range steps.Content {
			if i < len(s.Steps) {
				s.Steps[i].Line = n.Line
			}
		}
	}

	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func validate(s *Script) error {
	if s.ID == "" {
		return &LoadError{Message: "script ID is required"}
	}
	if len(s.Steps) == 0 {
		return &LoadError{Message: "script must have at least one step"}
	}
	for i, st := range s.Steps {
		if strings.TrimSpace(st.Action) == "" {
			return &LoadError{
				Line:    st.Line,
				Message: "step " + strconv.Itoa(i+1) + " has no action",
			}
		}
	}
	if _, err := uut.BuildAll(s.Loads); err != nil {
		return &LoadError{Message: "invalid loads", Cause: err}
	}
	return nil
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// LoadScript loads a bench script from a file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	s, err := ParseScript(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	s.File = path
	return s, nil
}

// LoadDirectory loads all scripts from a directory.
// Only files with .yaml or .yml extensions are loaded, in name order.
func LoadDirectory(dir string) ([]*Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var scripts []*Script
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		s, err := LoadScript(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// LoadDirectoryRecursive loads all scripts from a directory and subdirectories.
func LoadDirectoryRecursive(dir string) ([]*Script, error) {
	var scripts []*Script

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		s, err := LoadScript(path)
		if err != nil {
			return err
		}
		scripts = append(scripts, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scripts, nil
}

// LoadPaths loads scripts from a mix of files and directories. Directories
// are searched recursively. Duplicate IDs are rejected.
func LoadPaths(paths []string) ([]*Script, error) {
	var scripts []*Script
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &LoadError{File: p, Message: "cannot access path", Cause: err}
		}
		if info.IsDir() {
			found, err := LoadDirectoryRecursive(p)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, found...)
			continue
		}
		s, err := LoadScript(p)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}

	seen := make(map[string]string, len(scripts))
	for _, s := range scripts {
		if prev, dup := seen[s.ID]; dup {
			return nil, &LoadError{
				File:    s.File,
				Message: "duplicate script ID " + s.ID + " (also in " + prev + ")",
			}
		}
		seen[s.ID] = s.File
	}
	return scripts, nil
}

// FilterByTags returns the scripts carrying at least one of tags.
// An empty tag list selects everything.
func FilterByTags(scripts []*Script, tags []string) []*Script {
	if len(tags) == 0 {
		return scripts
	}
	var out []*Script
	for _, s := range scripts {
		for _, t := range tags {
			if slices.Contains(s.Tags, t) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// SortByID orders scripts by ID in place.
func SortByID(scripts []*Script) {
	sort.SliceStable(scripts, func(i, j int) bool {
		return scripts[i].ID < scripts[j].ID
	})
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
