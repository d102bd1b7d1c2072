package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/bot"
	"github.com/domino14/caissa/config"
)

var cfg *config.Config
var selector *aibot.MoveSelector
var nc *nats.Conn

// HardTimeLimit bounds a single search.
const HardTimeLimit = 60 * time.Second

func HandleRequest(ctx context.Context, evt bot.LambdaEvent) (*bot.Response, error) {
	logger := log.With().
		Str("gameID", evt.GameID).
		Str("difficulty", evt.Difficulty).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, HardTimeLimit)
	defer cancel()

	resp := bot.Compute(ctx, selector, evt.Request)
	if resp.Error != "" {
		logger.Error().Str("fen", evt.FEN).Str("error", resp.Error).Msg("bot-move-failed")
	} else {
		logger.Info().Str("move", resp.Move).Float64("value", resp.Value).Msg("bot-move")
	}

	if evt.ReplyChannel != "" && nc != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("move-sending-via-nats")
		err = retry.Do(
			func() error {
				// We only wait for an acknowledgement.
				_, err := nc.Request(evt.ReplyChannel, data, 3*time.Second)
				return err
			},
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				logger.Err(err).Uint("n", n).
					Msg("did-not-receive-ack-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			logger.Err(err).Msg("reply-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	return resp, nil
}

func main() {
	cfg = config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading-config")
	}
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var err error
	selector, err = aibot.NewMoveSelectorFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building-selector")
	}

	nc, err = nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		// Replies over NATS are optional; the move is also the return value.
		log.Warn().AnErr("natsConnectErr", err).Msg("no-nats-replies")
		nc = nil
	}

	lambda.Start(HandleRequest)
}
