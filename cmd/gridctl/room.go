package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-redis/redis/v8"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/isqad/livelook-grid/internal/eventbus"
	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
	"github.com/isqad/livelook-grid/internal/service"
)

var errRoomNotFound = errors.New("room not found")

var roomCommand = &cli.Command{
	Name:  "room",
	Usage: "show the layout of a room",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost:80"},
		&cli.StringFlag{Name: "room", Required: true},
	},
	Action: func(c *cli.Context) error {
		client := &http.Client{Timeout: 5 * time.Second}

		snapshot, err := fetchRoom(client, c.String("host"), c.String("room"))
		if err != nil {
			return err
		}

		renderRoom(c.App.Writer, snapshot)
		return nil
	},
}

func fetchRoom(client *http.Client, host, roomID string) (*service.RoomSnapshot, error) {
	u := url.URL{Scheme: "http", Host: host, Path: "/api/v1/rooms/" + url.PathEscape(roomID) + "/layout"}

	resp, err := client.Get(u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, errRoomNotFound
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	snapshot := &service.RoomSnapshot{}
	if err := json.NewDecoder(resp.Body).Decode(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func renderRoom(w io.Writer, snapshot *service.RoomSnapshot) {
	pinned := ""
	if pin := snapshot.State.PinnedParticipant; pin != nil {
		pinned = pin.ID
	}
	presenters := make(map[string]bool, len(snapshot.State.PresenterParticipantIDs))
	for _, id := range snapshot.State.PresenterParticipantIDs {
		presenters[id] = true
	}

	fmt.Fprintf(w, "room %s: %s %s, %s clients\n",
		snapshot.RoomID,
		snapshot.State.Mode,
		snapshot.State.Type,
		humanize.Comma(int64(snapshot.Clients)),
	)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Hidden", "Presenting", "Pinned", "Hand"})
	for _, p := range snapshot.Participants {
		table.Append([]string{
			p.ID,
			p.User.Name,
			fmt.Sprint(p.Hidden),
			fmt.Sprint(presenters[p.ID]),
			fmt.Sprint(p.ID == pinned),
			fmt.Sprint(snapshot.State.RaisedHandParticipantIDs[p.ID]),
		})
	}
	table.Render()
}

var publishCommand = &cli.Command{
	Name:  "publish",
	Usage: "publish a conference event of a room to the bus",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "bus", Value: "redis", Usage: "either 'redis' or 'nats'"},
		&cli.StringFlag{Name: "redis-addr", Value: "localhost:6379"},
		&cli.StringFlag{Name: "nats-addr", Value: "nats://localhost:4222"},
		&cli.StringFlag{Name: "room", Required: true},
		&cli.StringFlag{Name: "rpc", Required: true, Usage: `JSON-RPC event, example: '{"jsonrpc":"2.0","method":"unpin"}'`},
	},
	Action: func(c *cli.Context) error {
		payload := []byte(c.String("rpc"))
		event, err := rpc.RpcFromReader(bytes.NewReader(payload))
		if err != nil {
			return err
		}

		bus, err := dialBus(c.String("bus"), c.String("redis-addr"), c.String("nats-addr"))
		if err != nil {
			return err
		}
		defer bus.Close()

		ctx, cancel := context.WithTimeout(c.Context, 5*time.Second)
		defer cancel()

		if err := bus.Publish(ctx, c.String("room"), event); err != nil {
			return err
		}

		log.Info().
			Str("service", "gridctl").
			Str("room", c.String("room")).
			Str("size", humanize.Bytes(uint64(len(payload)))).
			Msg("published")
		return nil
	},
}

func dialBus(backend, redisAddr, natsAddr string) (eventbus.Bus, error) {
	switch backend {
	case "nats":
		return eventbus.NewNatsBus(natsAddr)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		return &redisBus{RedisBus: eventbus.RedisPubSub(rdb), rdb: rdb}, nil
	default:
		return nil, fmt.Errorf("unknown bus %q", backend)
	}
}

// redisBus owns its client
type redisBus struct {
	*eventbus.RedisBus
	rdb *redis.Client
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
