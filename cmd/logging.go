package cmd

import (
	"github.com/df07/go-principled-shading/pkg/log"
	"github.com/urfave/cli"
)

var logger = log.New("principled")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// libraryLogger adapts the command logger for packages that report through
// core.Logger
func libraryLogger(level log.Level) log.Printer {
	return log.Printer{Logger: logger, Level: level}
}
