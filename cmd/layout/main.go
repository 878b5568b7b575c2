package main

import (
	"context"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/isqad/livelook-grid/internal/api"
	"github.com/isqad/livelook-grid/internal/config"
	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/eventbus"
	"github.com/isqad/livelook-grid/internal/service"
	"github.com/isqad/livelook-grid/internal/ws"
)

func main() {
	app := &cli.App{
		Name:        "livelook-layout",
		Usage:       "Participant tiles layout server",
		Description: "",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "environment: either 'development' or 'production'",
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "listen IP and port, example: ':80' (default value) for listen on 0.0.0.0:80",
			},
			&cli.StringFlag{
				Name:  "bus",
				Usage: "conference events bus: either 'redis' or 'nats'",
			},
			&cli.StringFlag{
				Name:  "redis-addr",
				Usage: "redis address, example: 'localhost:6379'",
			},
			&cli.StringFlag{
				Name:  "nats-addr",
				Usage: "nats address, example: 'nats://localhost:4222'",
			},
			&cli.StringFlag{
				Name:  "postgres-dsn",
				Usage: "postgres DSN of the layout preferences, none when empty",
			},
		},
		Action: startLayout,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

// flagKeys maps the CLI flags onto the config keys they override
var flagKeys = map[string]string{
	"env":          "env",
	"address":      "address",
	"bus":          "bus.backend",
	"redis-addr":   "redis.addr",
	"nats-addr":    "nats.addr",
	"postgres-dsn": "postgres.dsn",
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	v := config.New()
	overrideWithFlags(c, v)

	return config.Load(v, c.String("config"))
}

func overrideWithFlags(c *cli.Context, v *viper.Viper) {
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			v.Set(key, c.String(flag))
		}
	}
}

func startLayout(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: conf.Redis.Addr,
		DB:   conf.Redis.DB,
	})
	states := core.NewLayoutStateRedisStore(rdb, conf.Redis.StateTTL)

	var (
		db          *sqlx.DB
		preferences core.PreferencesStorer
	)
	if conf.Postgres.DSN != "" {
		db, err = sqlx.Connect("pgx", conf.Postgres.DSN)
		if err != nil {
			return err
		}
		preferences = core.NewPreferencesRepository(db)
	}

	bus, err := newBus(conf, rdb)
	if err != nil {
		return err
	}

	dispatcher := engine.NewResizeDispatcher()
	rooms := service.NewRoomsManager(conf.Layout.Engine(), dispatcher, states)

	router, err := eventbus.NewRouter(context.Background(), bus, rooms)
	if err != nil {
		return err
	}
	<-router.Start()

	apiApp := api.NewApp(api.AppOptions{
		Layout:      conf.Layout.Engine(),
		Rooms:       rooms,
		Preferences: preferences,
	})

	wsApp := ws.New(ws.WsAppOptions{
		Env:            conf.Environment(),
		Address:        conf.Address,
		Rooms:          rooms,
		Dispatcher:     dispatcher,
		Preferences:    preferences,
		ResizeDebounce: conf.Layout.ResizeDebounce,
		API:            apiApp.Router(),
		OnShutdown: func() {
			<-router.Stop()
			rooms.Close()

			if err := bus.Close(); err != nil {
				log.Error().Err(err).Str("service", "layout").Msg("close bus")
			}
			if db != nil {
				if err := db.Close(); err != nil {
					log.Error().Err(err).Str("service", "layout").Msg("close postgres")
				}
			}
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Str("service", "layout").Msg("close redis")
			}
		},
	})

	return wsApp.Start()
}

func newBus(conf *config.Config, rdb *redis.Client) (eventbus.Bus, error) {
	if conf.Bus.Backend == config.NatsBackend {
		return eventbus.NewNatsBus(conf.Nats.Addr)
	}
	return eventbus.RedisPubSub(rdb), nil
}
