package gallery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bakkerme/photoselector/internal/core"
)

// Filter hides gallery items for which its rule evaluates to false.
// Rules see name, ext, size, mime, type, album and modified_at, e.g.
//
//	size > 0 && ext != ".gif"
type Filter struct {
	rule    string
	program *vm.Program
}

func NewFilter(rule string) (*Filter, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, fmt.Errorf("filter rule is required")
	}
	program, err := expr.Compile(rule, expr.Env(filterEnv(core.Photo{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile gallery filter: %w", err)
	}
	return &Filter{rule: rule, program: program}, nil
}

func (f *Filter) Rule() string {
	return f.rule
}

// Match reports whether photo should be offered. A nil filter matches everything.
func (f *Filter) Match(photo core.Photo) (bool, error) {
	if f == nil {
		return true, nil
	}
	result, err := expr.Run(f.program, filterEnv(photo))
	if err != nil {
		return false, fmt.Errorf("run gallery filter: %w", err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("gallery filter did not return bool")
	}
	return matched, nil
}

func filterEnv(photo core.Photo) map[string]interface{} {
	name := filepath.Base(photo.Path)
	if photo.Path == "" {
		name = ""
	}
	return map[string]interface{}{
		"name":        name,
		"ext":         strings.ToLower(filepath.Ext(photo.Path)),
		"size":        photo.Size,
		"mime":        photo.Mime,
		"type":        photo.Type.String(),
		"album":       photo.Album,
		"modified_at": photo.ModifiedAt,
	}
}
