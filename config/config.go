package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigHTTPAddr          = "http-addr"
	ConfigCORSOrigins       = "cors-origins"
	ConfigNatsURL           = "nats-url"
	ConfigBotSubject        = "bot-subject"
	ConfigAIBackend         = "ai-backend"
	ConfigLambdaFunction    = "lambda-function"
	ConfigSearchThreads     = "search-threads"
	ConfigMaxDepth          = "max-depth"
	ConfigRandSeed          = "rand-seed"
	ConfigDefaultDifficulty = "default-difficulty"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
)

// AI backends understood by ai-backend.
const (
	BackendLocal  = "local"
	BackendNats   = "nats"
	BackendLambda = "lambda"
)

var ErrBadSeed = errors.New("rand-seed must be 32 base64-encoded bytes")

type Config struct {
	*viper.Viper
	args []string
}

func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigHTTPAddr, ":5000")
	c.SetDefault(ConfigCORSOrigins, []string{"http://localhost:5173"})
	c.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	c.SetDefault(ConfigBotSubject, "caissa.bot")
	c.SetDefault(ConfigAIBackend, BackendLocal)
	c.SetDefault(ConfigLambdaFunction, "caissa-bot")
	c.SetDefault(ConfigSearchThreads, 1)
	c.SetDefault(ConfigMaxDepth, 6)
	c.SetDefault(ConfigRandSeed, "")
	c.SetDefault(ConfigDefaultDifficulty, "medium")
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
}

// Load reads flags from args, then the environment (CAISSA_ prefix).
// Flags win over the environment.
func (c *Config) Load(args []string) error {
	if c.Viper == nil {
		c.Viper = viper.New()
	}
	c.setDefaults()

	fs := pflag.NewFlagSet("caissa", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigHTTPAddr, ":5000", "address the HTTP server listens on")
	fs.StringSlice(ConfigCORSOrigins, []string{"http://localhost:5173"}, "allowed CORS origins")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "the NATS server URL")
	fs.String(ConfigBotSubject, "caissa.bot", "NATS subject the bot listens on")
	fs.String(ConfigAIBackend, BackendLocal, "where AI moves are computed: local, nats or lambda")
	fs.String(ConfigLambdaFunction, "caissa-bot", "Lambda function name for the lambda backend")
	fs.Int(ConfigSearchThreads, 1, "goroutines used to search root moves")
	fs.Int(ConfigMaxDepth, 6, "refuse searches deeper than this")
	fs.String(ConfigRandSeed, "", "base64 32-byte seed for reproducible move selection")
	fs.String(ConfigDefaultDifficulty, "medium", "difficulty used when none is given")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix("caissa")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return nil
}

// Args returns the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// Seed decodes rand-seed. ok is false when no seed is configured.
func (c *Config) Seed() (seed [32]byte, ok bool, err error) {
	s := c.GetString(ConfigRandSeed)
	if s == "" {
		return seed, false, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil || len(b) != 32 {
		return seed, false, ErrBadSeed
	}
	copy(seed[:], b)
	return seed, true, nil
}

func (c *Config) SanitizedSettings() string {
	return fmt.Sprintf("debug=%v http-addr=%s ai-backend=%s nats-url=%s max-depth=%d threads=%d",
		c.GetBool(ConfigDebug), c.GetString(ConfigHTTPAddr), c.GetString(ConfigAIBackend),
		c.GetString(ConfigNatsURL), c.GetInt(ConfigMaxDepth), c.GetInt(ConfigSearchThreads))
}
