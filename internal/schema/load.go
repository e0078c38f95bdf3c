package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Load error codes.
const (
	ErrCodeNotFound    = "E001" // descriptor file missing
	ErrCodeParseFailed = "E002" // malformed YAML or CUE
	ErrCodeUnsupported = "E003" // unknown file extension
	ErrCodeDuplicate   = "E004" // duplicate entity name
)

// LoadError represents an error that occurred while loading a descriptor file.
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

// File is the on-disk shape of a descriptor file.
type File struct {
	Entities []*Entity `yaml:"entities" json:"entities"`
}

// Load reads a descriptor file. The format is chosen by extension:
// .yaml/.yml for YAML, .cue for CUE.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: fmt.Sprintf("reading descriptor: %v", err)}
	}

	var (
		r       *Registry
		loadErr error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		r, loadErr = LoadYAML(data)
	case ".cue":
		r, loadErr = LoadCUE(data, path)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Path: path, Message: "descriptor must be .yaml, .yml or .cue"}
	}

	// Attach the file path to errors produced from raw bytes
	var le *LoadError
	if errors.As(loadErr, &le) && le.Path == "" {
		le.Path = path
	}
	return r, loadErr
}

// LoadYAML parses a YAML descriptor with strict field validation.
func LoadYAML(data []byte) (*Registry, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&file); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	return buildRegistry(&file)
}

// LoadCUE evaluates a CUE descriptor and decodes the concrete result.
// CUE constraints (e.g. `type: "string" | "int"`) are checked by the evaluator
// before the decode.
func LoadCUE(data []byte, filename string) (*Registry, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("CUE value is not concrete: %v", err)}
	}

	var file File
	if err := value.Decode(&file); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("decoding CUE value: %v", err)}
	}
	return buildRegistry(&file)
}

func buildRegistry(file *File) (*Registry, error) {
	r := NewRegistry()
	for _, e := range file.Entities {
		if e == nil {
			continue
		}
		if r.Entity(e.Name) != nil {
			return nil, &LoadError{Code: ErrCodeDuplicate, Message: fmt.Sprintf("duplicate entity %q", e.Name)}
		}
		r.Add(e)
	}
	return r, nil
}
