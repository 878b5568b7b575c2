package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/isqad/livelook-grid/internal/bot"
	"github.com/isqad/livelook-grid/internal/layout"
)

func main() {
	log.Logger = log.Output(zerolog.NewConsoleWriter())

	app := &cli.App{
		Name:        "gridbot",
		Usage:       "Headless client watching the tiles layout of a room",
		Description: "",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "localhost:80",
				Usage: "main host of server",
			},
			&cli.BoolFlag{
				Name:  "secure",
				Usage: "connect with wss",
			},
			&cli.StringFlag{
				Name:     "room",
				Usage:    "room to watch",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "user the bot renders the layout for, a spectator when empty",
			},
			&cli.StringFlag{
				Name:  "device",
				Value: string(layout.Desktop),
				Usage: "device class: desktop, mobile or tablet",
			},
			&cli.Float64Flag{
				Name:  "width",
				Value: 1600,
			},
			&cli.Float64Flag{
				Name:  "height",
				Value: 900,
			},
			&cli.Float64Flag{
				Name:  "scroll-step",
				Usage: "scroll the participants panel by that many pixels",
			},
			&cli.DurationFlag{
				Name:  "scroll-every",
				Usage: "interval between scrolls",
			},
		},
		Action: startBot,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

func startBot(c *cli.Context) error {
	device, err := layout.ParseDeviceClass(c.String("device"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bot.New(bot.Options{
		Host:        c.String("host"),
		Secure:      c.Bool("secure"),
		RoomID:      c.String("room"),
		UserID:      c.String("user"),
		Device:      device,
		Width:       c.Float64("width"),
		Height:      c.Float64("height"),
		ScrollStep:  c.Float64("scroll-step"),
		ScrollEvery: c.Duration("scroll-every"),
	})

	return b.Start(ctx)
}
