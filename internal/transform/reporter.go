package transform

import (
	"github.com/coreoz/ctormeta/internal/ast"
	"github.com/coreoz/ctormeta/internal/config"
	"github.com/coreoz/ctormeta/internal/logger"
	"github.com/coreoz/ctormeta/internal/metadata"
	"github.com/coreoz/ctormeta/internal/printer"
)

// reporter prints what the pass discovered for each class, gated by level.
type reporter struct {
	level config.LogLevel
	log   logger.Logger
}

func (r reporter) report(meta metadata.Class, class *ast.Class) {
	if !r.level.Enabled() || r.log == nil {
		return
	}
	r.log.Info("processing class", "class", meta.Name, "ctorArgs", meta.ArgsString())
	if r.level == config.LogDebug {
		r.log.Debug("class after transform", "class", meta.Name, "source", printer.Class(meta.Name, class))
	}
}
