package bot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/position"
)

const DefaultRequestTimeout = 10 * time.Second

// Client asks a bot listening on a NATS subject for moves. It implements
// the selector's MoveProvider interface so a game can be driven by a remote
// engine.
type Client struct {
	nc       *nats.Conn
	channel  string
	timeout  time.Duration
	attempts uint
}

func NewClient(nc *nats.Conn, channel string) *Client {
	return &Client{nc: nc, channel: channel, timeout: DefaultRequestTimeout, attempts: 3}
}

func (c *Client) SetTimeout(d time.Duration) { c.timeout = d }

// RequestMove sends the position to the bot and waits for its answer.
// Transport failures are retried with backoff; an error reported by the bot
// is returned straight away.
func (c *Client) RequestMove(ctx context.Context, fen, difficulty string) (*Response, error) {
	data, err := json.Marshal(Request{FEN: fen, Difficulty: difficulty})
	if err != nil {
		return nil, err
	}
	var resp *Response
	err = retry.Do(
		func() error {
			rctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			msg, err := c.nc.RequestWithContext(rctx, c.channel, data)
			if err != nil {
				if c.nc.LastError() != nil {
					log.Error().Msgf("%v for request", c.nc.LastError())
				}
				return err
			}
			log.Debug().Msgf("res: %v", string(msg.Data))
			r := &Response{}
			if err := json.Unmarshal(msg.Data, r); err != nil {
				return retry.Unrecoverable(err)
			}
			if err := r.Err(); err != nil {
				return retry.Unrecoverable(err)
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("bot-request-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ChooseMove(ctx context.Context, pos *position.Position, difficulty string) (position.Move, error) {
	resp, err := c.RequestMove(ctx, pos.FEN(), difficulty)
	if err != nil {
		return position.Move{}, err
	}
	return moveFromResponse(pos, resp)
}

func moveFromResponse(pos *position.Position, resp *Response) (position.Move, error) {
	if resp.UCI == "" && resp.Move == "" {
		return position.Move{}, errors.New("bot response had no move")
	}
	s := resp.UCI
	if s == "" {
		s = resp.Move
	}
	return pos.ParseMove(s)
}
