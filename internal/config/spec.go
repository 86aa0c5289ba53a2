package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/frame-pump-go/internal/errors"
)

// PipelineSpec describes one pipeline in a JSON file: the executable to
// launch and the frame geometry of its stdout.
//
// The frame size is given either directly or as width*height*bytes_per_pixel.
type PipelineSpec struct {
	Executable    string            `json:"executable" jsonschema:"executable name (looked up in PATH) or path"`
	Args          []string          `json:"args,omitempty" jsonschema:"literal argv passed after the executable"`
	Cwd           string            `json:"cwd,omitempty" jsonschema:"working directory of the child"`
	Env           map[string]string `json:"env,omitempty" jsonschema:"environment overrides"`
	FrameSize     int               `json:"frame_size,omitempty" jsonschema:"frame size in bytes"`
	Width         int               `json:"width,omitempty" jsonschema:"frame width in pixels"`
	Height        int               `json:"height,omitempty" jsonschema:"frame height in pixels"`
	BytesPerPixel int               `json:"bytes_per_pixel,omitempty" jsonschema:"bytes per pixel"`
	Stdin         string            `json:"stdin,omitempty" jsonschema:"stdin mode: discard, inherit or pipe"`
	Stderr        string            `json:"stderr,omitempty" jsonschema:"stderr mode: discard, inherit or pipe"`
	SearchPaths   []string          `json:"search_paths,omitempty" jsonschema:"directories searched after PATH"`
}

var streamModeNames = []any{"", "null", "discard", "parent", "inherit", "pipe"}

// pipelineSchema is derived once from PipelineSpec and tightened with the
// constraints the struct tags cannot express.
var pipelineSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	schema, err := jsonschema.For[PipelineSpec](nil)
	if err != nil {
		return nil, fmt.Errorf("infer pipeline schema: %w", err)
	}

	one := 1.0

	for _, name := range []string{"frame_size", "width", "height", "bytes_per_pixel"} {
		if prop, ok := schema.Properties[name]; ok {
			prop.Minimum = &one
		}
	}

	for _, name := range []string{"stdin", "stderr"} {
		if prop, ok := schema.Properties[name]; ok {
			prop.Enum = streamModeNames
		}
	}

	if prop, ok := schema.Properties["executable"]; ok {
		minLen := 1
		prop.MinLength = &minLen
	}

	schema.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}

	return schema.Resolve(nil)
})

// ParsePipelineSpec decodes and validates a JSON pipeline spec.
// Every failure wraps errors.ErrInvalidSpec.
func ParsePipelineSpec(data []byte) (*PipelineSpec, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidSpec, err)
	}

	resolved, err := pipelineSchema()
	if err != nil {
		return nil, err
	}

	if err := resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidSpec, err)
	}

	var spec PipelineSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidSpec, err)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// LoadPipelineSpec reads and validates a pipeline spec file.
func LoadPipelineSpec(path string) (*PipelineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline spec: %w", err)
	}

	spec, err := ParsePipelineSpec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return spec, nil
}

// Validate checks the constraints that span several fields.
func (s *PipelineSpec) Validate() error {
	if s.Executable == "" {
		return fmt.Errorf("%w: executable is required", errors.ErrInvalidSpec)
	}

	dims := s.Width != 0 || s.Height != 0 || s.BytesPerPixel != 0

	switch {
	case s.FrameSize != 0 && dims:
		return fmt.Errorf("%w: frame_size and width/height/bytes_per_pixel are exclusive", errors.ErrInvalidSpec)
	case s.FrameSize < 0:
		return fmt.Errorf("%w: frame_size must be positive", errors.ErrInvalidSpec)
	case s.FrameSize == 0 && !dims:
		return fmt.Errorf("%w: frame_size or width/height/bytes_per_pixel is required", errors.ErrInvalidSpec)
	case dims && (s.Width <= 0 || s.Height <= 0 || s.BytesPerPixel <= 0):
		return fmt.Errorf("%w: width, height and bytes_per_pixel must all be positive", errors.ErrInvalidSpec)
	}

	if _, err := ParseStreamMode(s.Stdin); err != nil {
		return fmt.Errorf("%w: stdin: %w", errors.ErrInvalidSpec, err)
	}

	if _, err := ParseStreamMode(s.Stderr); err != nil {
		return fmt.Errorf("%w: stderr: %w", errors.ErrInvalidSpec, err)
	}

	return nil
}

// ResolvedFrameSize returns the frame size in bytes.
func (s *PipelineSpec) ResolvedFrameSize() int {
	if s.FrameSize != 0 {
		return s.FrameSize
	}

	return s.Width * s.Height * s.BytesPerPixel
}

// Apply copies the spawn-related fields of the pipeline onto opts.
// Fields left empty in the pipeline file do not override opts.
func (s *PipelineSpec) Apply(opts *Options) {
	if s.Cwd != "" {
		opts.Cwd = s.Cwd
	}

	if len(s.Env) > 0 {
		if opts.Env == nil {
			opts.Env = make(map[string]string, len(s.Env))
		}

		for k, v := range s.Env {
			opts.Env[k] = v
		}
	}

	if s.Stdin != "" {
		opts.Stdin, _ = ParseStreamMode(s.Stdin)
	}

	if s.Stderr != "" {
		opts.Stderr, _ = ParseStreamMode(s.Stderr)
	}

	opts.SearchPaths = append(opts.SearchPaths, s.SearchPaths...)
}
