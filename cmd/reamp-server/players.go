/*
 * Copyright (c) 2026 elpescado.
 * This software is part of the Reamp Player project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/elpescado/reamp-player/internal/codec"
	"github.com/elpescado/reamp-player/internal/engine"
	"github.com/elpescado/reamp-player/internal/event"
	"github.com/elpescado/reamp-player/internal/loader"
	"github.com/elpescado/reamp-player/internal/manifest"

	"github.com/rs/zerolog/log"
)

// player is the per-payload runtime: one loader filling a buffer
// table, one engine playing out of it, one emitter joining them.
type player struct {
	decl   manifest.Player
	em     *event.Emitter
	loader *loader.Loader
	engine *engine.Engine
}

var (
	players  []*player
	activeMu sync.Mutex
	active   int
)

// loadPlayers discovers the payloads on the host page and builds a
// runtime for each. Decoding runs in the background; a player becomes
// playable when its buffer table fills.
func loadPlayers(manifestPath string) error {
	decls, err := manifest.DiscoverFile(manifestPath)
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return fmt.Errorf("no player payloads in %s", manifestPath)
	}

	registry := codec.NewRegistry()
	fetcher := loader.NewHTTPFetcher()
	out := engine.SpeakerOutput{}

	for i, decl := range decls {
		em := &event.Emitter{}
		l := loader.New(decl.Tracks, fetcher, registry, em)
		p := &player{
			decl:   decl,
			em:     em,
			loader: l,
			engine: engine.New(l, out, em),
		}
		players = append(players, p)
		watchPlayer(i, p)

		log.Info().Int("player", i).Str("title", decl.Title).
			Int("tracks", len(decl.Tracks)).Msg("player configured")

		go func(i int, p *player) {
			p.loader.LoadAll(context.Background())
			log.Info().Int("player", i).Bool("ready", p.loader.Ready()).Msg("load settled")
		}(i, p)
	}
	return nil
}

// watchPlayer forwards every player event to the control owner and
// mirrors load outcomes into the log.
func watchPlayer(idx int, p *player) {
	forward := func(ev event.Event) { pushEvent(idx, ev) }
	for _, t := range []event.Type{
		event.TrackLoaded, event.TrackFailed,
		event.TrackChanged, event.Started, event.Stopped,
	} {
		p.em.On(t, forward)
	}

	p.em.On(event.TrackFailed, func(ev event.Event) {
		log.Warn().Int("player", idx).Int("track", ev.Index).
			Err(ev.Err).Msg("track load failed")
	})
	p.em.On(event.TrackLoaded, func(ev event.Event) {
		log.Debug().Int("player", idx).Int("track", ev.Index).Msg("track loaded")
	})
}

func activePlayer() (int, *player) {
	activeMu.Lock()
	defer activeMu.Unlock()
	return active, players[active]
}

func setActive(i int) (*player, bool) {
	if i < 0 || i >= len(players) {
		return nil, false
	}
	activeMu.Lock()
	prev := players[active]
	active = i
	activeMu.Unlock()

	// only one engine drives the speaker at a time
	if prev != players[i] {
		prev.engine.Stop()
	}
	return players[i], true
}

func stopAll() {
	for _, p := range players {
		p.engine.Stop()
	}
}
