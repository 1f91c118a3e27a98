// Package project reads dependency names from the manifests in a project
// root. The names let the extractor note which dependencies a plan mentions.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"golang.org/x/mod/modfile"
)

// manifest parses one kind of dependency file.
type manifest struct {
	file  string
	parse func(data []byte) ([]string, error)
}

var manifests = []manifest{
	{file: "go.mod", parse: goModDependencies},
	{file: "package.json", parse: packageJSONDependencies},
	{file: "Cargo.toml", parse: cargoDependencies},
	{file: "pyproject.toml", parse: pyprojectDependencies},
}

// Dependencies returns the sorted, distinct dependency names declared in the
// manifests found in root. Missing manifests are skipped; a manifest that
// cannot be parsed is an error.
func Dependencies(fs afero.Fs, root string) ([]string, error) {
	seen := make(map[string]bool)
	for _, m := range manifests {
		data, err := afero.ReadFile(fs, filepath.Join(root, m.file))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", m.file, err)
		}

		names, err := m.parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", m.file, err)
		}
		for _, n := range names {
			seen[n] = true
		}
	}

	deps := make([]string, 0, len(seen))
	for n := range seen {
		deps = append(deps, n)
	}
	sort.Strings(deps)
	return deps, nil
}

func goModDependencies(data []byte) ([]string, error) {
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Require))
	for _, r := range f.Require {
		names = append(names, r.Mod.Path)
	}
	return names, nil
}

func packageJSONDependencies(data []byte) ([]string, error) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	var names []string
	for n := range pkg.Dependencies {
		names = append(names, n)
	}
	for n := range pkg.DevDependencies {
		names = append(names, n)
	}
	return names, nil
}

func cargoDependencies(data []byte) ([]string, error) {
	var cargo struct {
		Dependencies    map[string]toml.Primitive `toml:"dependencies"`
		DevDependencies map[string]toml.Primitive `toml:"dev-dependencies"`
	}
	if _, err := toml.Decode(string(data), &cargo); err != nil {
		return nil, err
	}
	var names []string
	for n := range cargo.Dependencies {
		names = append(names, n)
	}
	for n := range cargo.DevDependencies {
		names = append(names, n)
	}
	return names, nil
}

// requirementName captures the distribution name of a PEP 508 requirement.
var requirementName = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)

func pyprojectDependencies(data []byte) ([]string, error) {
	var py struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
	}
	if _, err := toml.Decode(string(data), &py); err != nil {
		return nil, err
	}
	var names []string
	for _, req := range py.Project.Dependencies {
		if m := requirementName.FindStringSubmatch(req); m != nil {
			names = append(names, m[1])
		}
	}
	return names, nil
}
