// Copyright 2024-2026 Aiku AI

// Command configcheck validates a mautrix-irc network configuration file.
// It compiles the identifier templates, runs the render/extract round-trip
// self-test, and warns about override entries that can never match. With
// -nick or -mxid it additionally prints what the given name maps to, which
// is handy when tuning templates.
package main

import (
	"flag"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"maunium.net/go/mautrix/id"

	"github.com/aiku/mautrix-irc/pkg/irc"
)

type options struct {
	Config string `env:"MAUTRIX_IRC_CONFIG" envDefault:"config.yaml"`
	Nick   string `env:"MAUTRIX_IRC_CHECK_NICK"`
	MXID   string `env:"MAUTRIX_IRC_CHECK_MXID"`
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var opts options
	if err := env.Parse(&opts); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse environment")
	}
	flag.StringVar(&opts.Config, "config", opts.Config, "path to the network config file")
	flag.StringVar(&opts.Nick, "nick", opts.Nick, "IRC nick to render identifiers for")
	flag.StringVar(&opts.MXID, "mxid", opts.MXID, "Matrix user ID to run claim/extract against")
	flag.Parse()

	raw, err := os.ReadFile(opts.Config)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Config).Msg("Failed to read config")
	}
	var cfg irc.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse config")
	}
	if err := cfg.PostProcess(); err != nil {
		log.Fatal().Err(err).Msg("Config failed validation")
	}
	cfg.Validate(log)

	matcher := cfg.Matcher()
	if opts.Nick != "" {
		log.Info().
			Str("nick", opts.Nick).
			Str("user_id", matcher.FormatUserID(opts.Nick).String()).
			Str("displayname", matcher.FormatDisplayname(opts.Nick)).
			Msg("Rendered identifiers")
	}
	if opts.MXID != "" {
		userID := id.UserID(opts.MXID)
		if nick, ok := matcher.NickFromUserID(userID); ok {
			log.Info().
				Str("mxid", opts.MXID).
				Str("nick", nick).
				Msg("User ID is claimed by this bridge")
		} else {
			log.Info().
				Str("mxid", opts.MXID).
				Msg("User ID is not claimed by this bridge")
		}
	}

	log.Info().
		Str("domain", cfg.Domain).
		Str("homeserver", cfg.HomeserverDomain).
		Msg("Config OK")
}
