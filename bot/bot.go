// Package bot serves moves over NATS request/reply, and provides clients for
// asking a remote bot (over NATS or by invoking a Lambda function) for moves.
package bot

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/position"
)

type Bot struct {
	config   *config.Config
	selector *aibot.MoveSelector

	mu  sync.Mutex
	nc  *nats.Conn
	sub *nats.Subscription
}

func NewBot(cfg *config.Config, selector *aibot.MoveSelector) *Bot {
	return &Bot{config: cfg, selector: selector}
}

// Compute answers a single request. Failures are reported in the response.
func Compute(ctx context.Context, selector *aibot.MoveSelector, req Request) *Response {
	var pos *position.Position
	if req.FEN == "" {
		pos = position.Start()
	} else {
		var err error
		pos, err = position.FromFEN(req.FEN)
		if err != nil {
			return errorResponse("could not parse position", err)
		}
	}
	sel, err := selector.BestMove(ctx, pos, aibot.LookupDifficulty(req.Difficulty))
	if err != nil {
		return errorResponse("could not compute move", err)
	}
	return &Response{
		Move:       sel.SAN,
		UCI:        sel.UCI,
		FEN:        pos.Apply(sel.Move).FEN(),
		Value:      sel.Value,
		Nodes:      sel.Nodes,
		Difficulty: sel.Difficulty.Name,
		GameID:     req.GameID,
	}
}

func (bot *Bot) handle(ctx context.Context, data []byte) *Response {
	req := Request{}
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("could not parse request", err)
	}
	resp := Compute(ctx, bot.selector, req)
	if resp.Error == "" {
		log.Info().Str("gameID", req.GameID).Str("move", resp.Move).
			Str("difficulty", resp.Difficulty).Msg("generated-move")
	} else {
		log.Error().Str("gameID", req.GameID).Str("error", resp.Error).Msg("bot-request-failed")
	}
	return resp
}

// Start connects to NATS and answers requests on subject until Close.
func (bot *Bot) Start(ctx context.Context, subject string) error {
	nc, err := nats.Connect(bot.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return err
	}
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Debug().Msgf("RECV: %d bytes", len(m.Data))
		resp := bot.handle(ctx, m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			// Should never happen, but the requester still needs an answer.
			m.Respond([]byte(`{"error":"` + err.Error() + `"}`))
			return
		}
		m.Respond(data)
	})
	if err != nil {
		nc.Close()
		return err
	}
	if err := nc.Flush(); err != nil {
		nc.Close()
		return err
	}
	if err := nc.LastError(); err != nil {
		nc.Close()
		return err
	}
	bot.mu.Lock()
	bot.nc, bot.sub = nc, sub
	bot.mu.Unlock()
	log.Info().Msgf("Listening on [%s]", subject)
	return nil
}

// Close stops answering requests and drains the connection.
func (bot *Bot) Close() error {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	if bot.nc == nil {
		return nil
	}
	var result *multierror.Error
	if err := bot.sub.Unsubscribe(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := bot.nc.Drain(); err != nil {
		result = multierror.Append(result, err)
	}
	bot.nc, bot.sub = nil, nil
	return result.ErrorOrNil()
}
