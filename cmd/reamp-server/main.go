/*
 * Copyright (c) 2026 elpescado.
 * This software is part of the Reamp Player project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	socket_file   = "/tmp/reamp-server.sock"
	version_major = 1
	version_minor = 0
	server_name   = "Reamp-Server"
)

func main() {
	manifestPath := flag.String("manifest", os.Getenv("REAMP_MANIFEST"), "host page with embedded player payloads")
	socketPath := flag.String("socket", envOr("REAMP_SOCKET", socket_file), "unix socket to listen on")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *manifestPath == "" {
		log.Fatal().Msg("no manifest given, use -manifest or REAMP_MANIFEST")
	}

	if err := loadPlayers(*manifestPath); err != nil {
		log.Fatal().Err(err).Str("manifest", *manifestPath).Msg("manifest load failed")
	}

	startIPC(*socketPath)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
