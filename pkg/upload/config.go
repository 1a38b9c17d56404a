package upload

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	DefaultMainTip      = "Click or drag files to this area to upload"
	DefaultSecondaryTip = "Single or bulk upload supported"
)

// Config describes an upload target and the local constraints applied
// before any request is made.
type Config struct {
	URL    string `json:"url" yaml:"url"`
	Accept string `json:"accept" yaml:"accept"`
	// MaxSizeMB limits a single file. Zero disables the check.
	MaxSizeMB    float64        `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
	Params       map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Multiple     bool           `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	MainTip      string         `json:"mainTip,omitempty" yaml:"mainTip,omitempty"`
	SecondaryTip string         `json:"secondaryTip,omitempty" yaml:"secondaryTip,omitempty"`
}

// Tips returns the caller's tips, falling back to the defaults when empty.
func (c Config) Tips() (main, secondary string) {
	main, secondary = c.MainTip, c.SecondaryTip
	if strings.TrimSpace(main) == "" {
		main = DefaultMainTip
	}
	if strings.TrimSpace(secondary) == "" {
		secondary = DefaultSecondaryTip
	}
	return main, secondary
}

// Extensions parses Accept into a lower-cased set without leading dots.
// An empty Accept yields nil, which accepts every file.
func (c Config) Extensions() map[string]struct{} {
	var set map[string]struct{}
	for _, item := range strings.Split(c.Accept, ",") {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(item), "."))
		if ext == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{})
		}
		set[ext] = struct{}{}
	}
	return set
}

// Check applies the type and size constraints to a file.
func (c Config) Check(name string, size int64) error {
	if exts := c.Extensions(); exts != nil {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		if _, ok := exts[ext]; !ok {
			return &RejectError{File: name, Constraint: ConstraintType, Accept: c.Accept}
		}
	}
	if c.MaxSizeMB > 0 && float64(size) > c.MaxSizeMB*1024*1024 {
		return &RejectError{File: name, Constraint: ConstraintSize, MaxSizeMB: c.MaxSizeMB}
	}
	return nil
}

const (
	ConstraintType = "type"
	ConstraintSize = "size"
)

// RejectError reports a file refused before upload.
type RejectError struct {
	File       string
	Constraint string
	Accept     string
	MaxSizeMB  float64
}

func (e *RejectError) Error() string {
	if e.Constraint == ConstraintSize {
		return fmt.Sprintf("file exceeds the size limit: %sM", strconv.FormatFloat(e.MaxSizeMB, 'f', -1, 64))
	}
	return fmt.Sprintf("invalid file type, expected: %s", e.Accept)
}
