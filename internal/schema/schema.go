// Package schema checks snapshot text against CUE definitions of each
// container's shape.
//
// This is a structural check that runs beside the state validators. It is
// stricter in two places: unknown fields are rejected, and counters are
// bounded by maxSize.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/adt/internal/state"
)

//go:embed containers.cue
var definitions string

// Kinds lists the snapshot kinds with a definition.
var Kinds = state.Kinds

// Violation is one schema failure.
type Violation struct {
	Path    string    `json:"path"`
	Message string    `json:"message"`
	Pos     token.Pos `json:"-"`
}

func (v Violation) Error() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Checker holds the compiled definitions.
// A Checker is not safe for concurrent use.
type Checker struct {
	ctx  *cue.Context
	root cue.Value
}

// New compiles the embedded definitions.
func New() (*Checker, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(definitions, cue.Filename("containers.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("schema: compile definitions: %w", err)
	}
	return &Checker{ctx: ctx, root: root}, nil
}

// Definition returns the CUE definition for kind.
func (c *Checker) Definition(kind string) (cue.Value, bool) {
	def := c.root.LookupPath(cue.ParsePath("#" + kind))
	return def, def.Exists()
}

// Check unifies snapshot text with the definition for kind and returns
// every violation, or nil when the snapshot conforms. The returned error is
// non-nil only when kind has no definition.
func (c *Checker) Check(kind string, data []byte) ([]Violation, error) {
	def, ok := c.Definition(kind)
	if !ok {
		return nil, fmt.Errorf("schema: no definition for kind %q", kind)
	}

	v := c.ctx.CompileBytes(data, cue.Filename("snapshot.json"))
	if err := v.Err(); err != nil {
		return violations(err), nil
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return violations(err), nil
	}
	return nil, nil
}

// violations flattens a CUE error list. Paths are relative to the
// snapshot root.
func violations(err error) []Violation {
	errs := errors.Errors(err)
	out := make([]Violation, 0, len(errs))
	for _, e := range errs {
		path := e.Path()
		if len(path) > 0 && strings.HasPrefix(path[0], "#") {
			path = path[1:]
		}
		format, args := e.Msg()
		out = append(out, Violation{
			Path:    strings.Join(path, "."),
			Message: fmt.Sprintf(format, args...),
			Pos:     e.Position(),
		})
	}
	return out
}
