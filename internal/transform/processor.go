package transform

import (
	"github.com/coreoz/ctormeta/internal/ast"
	"github.com/coreoz/ctormeta/internal/metadata"
)

// processClass collects the constructor types of class, appends the two
// metadata getters and reports the result.
func (v *Visitor) processClass(name string, class *ast.Class) metadata.Class {
	meta := metadata.Class{Name: name, CtorArgs: []string{}, File: v.file}

	if ctor := findConstructor(class.Body); ctor != nil {
		meta.HasConstructor = true
		for _, p := range ctor.Params {
			meta.CtorArgs = append(meta.CtorArgs, resolveParam(p)...)
		}
	}

	class.Body = append(class.Body,
		ctorArgsMember(meta.CtorArgs),
		ctorNameMember(name),
	)

	v.reporter.report(meta, class)
	return meta
}
