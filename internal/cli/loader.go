package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bomgrid/internal/bom"
	"github.com/roach88/bomgrid/internal/compiler"
	"github.com/roach88/bomgrid/internal/lifecycle"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeParseFailed = "E003" // YAML parse failed
	ErrCodeNoFiles     = "E004" // No CUE files found
	ErrCodeLoadFailed  = "E005" // CUE load failed
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeDatabase    = "E007" // History database error
)

// LoadError represents an error that occurred during input loading.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Workbook is the YAML representation of one exported BOM sheet: a
// logical-column binding plus ordered rows of raw cells.
type Workbook struct {
	Columns map[string]int `yaml:"columns"`
	Rows    [][]string     `yaml:"rows"`
}

// LoadWorkbook reads a workbook YAML file into a grid and column map.
// Unknown YAML keys are rejected so typos fail loudly.
func LoadWorkbook(path string) (bom.Grid, bom.ColumnMap, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "workbook not found"}
		}
		return nil, nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error()}
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var wb Workbook
	if err := dec.Decode(&wb); err != nil {
		return nil, nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
	}

	columns := make(bom.ColumnMap, len(wb.Columns))
	for name, idx := range wb.Columns {
		columns[bom.Column(name)] = idx
	}

	grid := make(bom.Grid, len(wb.Rows))
	for i, row := range wb.Rows {
		grid[i] = bom.Row(row)
	}

	return grid, columns, nil
}

// LoadParts reads a part dictionary from a YAML file holding a list of
// part entries. Returns an empty dictionary when path is "".
func LoadParts(path string) (bom.PartDictionary, error) {
	if path == "" {
		return bom.PartDictionary{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "parts file not found"}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error()}
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var entries []bom.Part
	if err := dec.Decode(&entries); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
	}

	parts := make(bom.PartDictionary, len(entries))
	for _, p := range entries {
		parts[p.ID] = p
	}
	return parts, nil
}

// LoadSourcing reads a sourcing dictionary from a YAML file mapping part
// id to its approved-manufacturer list. Returns an empty dictionary when
// path is "".
func LoadSourcing(path string) (bom.SourcingDictionary, error) {
	if path == "" {
		return bom.SourcingDictionary{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "sourcing file not found"}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error()}
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	sourcing := bom.SourcingDictionary{}
	if err := dec.Decode(&sourcing); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
	}
	return sourcing, nil
}

// LoadPolicy loads a lifecycle policy from a directory of CUE files and
// validates it. Returns the built-in default policy when dir is "".
func LoadPolicy(dir string) (*lifecycle.Policy, error) {
	if dir == "" {
		return lifecycle.DefaultPolicy(), nil
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: dir, Message: "policy directory not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Path: dir, Message: err.Error()}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: dir, Message: "not a directory"}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Path: dir, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Path: dir, Message: "no CUE files found"}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: dir, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: dir, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Path: dir, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	policyVal := value.LookupPath(cue.ParsePath("lifecycle"))
	if !policyVal.Exists() {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Path: dir, Message: "no lifecycle struct found in policy files"}
	}

	policy, err := compiler.CompilePolicy(policyVal)
	if err != nil {
		return nil, err
	}

	if errs := compiler.Validate(policy); len(errs) > 0 {
		if len(errs) == 1 {
			return nil, fmt.Errorf("invalid policy: %w", errs[0])
		}
		return nil, fmt.Errorf("invalid policy: %w (and %d more)", errs[0], len(errs)-1)
	}

	return policy, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
