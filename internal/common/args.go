package common

import (
	"flag"

	"github.com/rs/zerolog/log"
)

const (
	CommandStart      = ""
	CommandValidate   = "validate"
	CommandListConfig = "ls-config"
	CommandListCerts  = "ls-certs"
)

type Args struct {
	Command    string
	ConfigFile string
}

func IsCommandValid(cmd string) bool {
	switch cmd {
	case CommandStart,
		CommandValidate,
		CommandListConfig,
		CommandListCerts:
		return true
	}
	return false
}

// GetArgs parses `[command] [config file]`.
//
// The config file falls back to ConfigFile when not given.
func GetArgs() Args {
	var args Args
	flag.Parse()
	args.Command = flag.Arg(0)
	if !IsCommandValid(args.Command) {
		log.Fatal().Msgf("invalid command: %s", args.Command)
	}
	args.ConfigFile = ConfigFile
	if flag.NArg() > 1 {
		args.ConfigFile = flag.Arg(1)
	}
	return args
}
