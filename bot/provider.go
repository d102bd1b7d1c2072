package bot

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/config"
)

// NewProvider returns the MoveProvider named by the ai-backend setting. The
// returned cleanup function releases any connection it opened.
func NewProvider(ctx context.Context, cfg *config.Config) (aibot.MoveProvider, func(), error) {
	backend := cfg.GetString(config.ConfigAIBackend)
	log.Info().Str("backend", backend).Msg("ai-backend")
	switch backend {
	case config.BackendLocal, "":
		ms, err := aibot.NewMoveSelectorFromConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		return ms, func() {}, nil
	case config.BackendNats:
		nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL))
		if err != nil {
			return nil, nil, errors.Wrap(err, "connecting to NATS")
		}
		return NewClient(nc, cfg.GetString(config.ConfigBotSubject)), nc.Close, nil
	case config.BackendLambda:
		lp, err := NewLambdaProvider(ctx, cfg.GetString(config.ConfigLambdaFunction))
		if err != nil {
			return nil, nil, err
		}
		return lp, func() {}, nil
	}
	return nil, nil, errors.Errorf("unknown ai backend %q", backend)
}
