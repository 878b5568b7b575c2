package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	log.Logger = log.Output(zerolog.NewConsoleWriter())

	app := &cli.App{
		Name:  "gridctl",
		Usage: "Layout calculators and conference events tool",
		Commands: []*cli.Command{
			viewportCommand,
			windowCommand,
			geometryCommand,
			roomCommand,
			publishCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
