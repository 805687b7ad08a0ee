package internal

import "time"

type Config struct {
	BadgerFilepath        string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel              string        `env:"LOG_LEVEL,required=true"`
	IdentityToken         string        `env:"IDENTITY_TOKEN,required=true"`
	WindowSize            int           `env:"WINDOW_SIZE,default=50"`
	IdentityTokenDuration time.Duration `env:"IDENTITY_TOKEN_DURATION,default=24h"`
}
