/*
 * Copyright (c) 2026 elpescado.
 * This software is part of the Reamp Player project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/elpescado/reamp-player/internal/event"
	"github.com/elpescado/reamp-player/internal/render"
	"github.com/elpescado/reamp-player/pkg/spec"

	"github.com/rs/zerolog/log"
)

// ===============================
// Globals
// ===============================

var (
	controlOwner net.Conn
	controlMu    sync.Mutex
)

func isOwner(c net.Conn) bool {
	controlMu.Lock()
	defer controlMu.Unlock()
	return controlOwner == c
}

func claimOwner(c net.Conn) bool {
	controlMu.Lock()
	defer controlMu.Unlock()
	if controlOwner == nil {
		controlOwner = c
		return true
	}
	return controlOwner == c
}

func releaseOwner(c net.Conn) {
	controlMu.Lock()
	wasOwner := controlOwner == c
	if wasOwner {
		controlOwner = nil
	}
	controlMu.Unlock()

	if wasOwner {
		stopAll()
	}
}

// pushEvent forwards a player event to the control owner as an
// "EVENT {json}" line. Observers never receive pushes.
func pushEvent(playerIdx int, ev event.Event) {
	controlMu.Lock()
	c := controlOwner
	controlMu.Unlock()
	if c == nil {
		return
	}

	msg := map[string]interface{}{
		"type":   ev.Type.String(),
		"player": playerIdx,
		"track":  ev.Index,
	}
	if ev.Err != nil {
		msg["error"] = ev.Err.Error()
	}
	b, _ := json.Marshal(msg)

	if _, err := c.Write(append(append([]byte("EVENT "), b...), '\n')); err != nil {
		// pushes run inside engine emit paths; the release stops
		// engines, so it must not run on this stack
		go releaseOwner(c)
	}
}

// ===============================
// IPC Server
// ===============================

func startIPC(socketPath string) {
	_ = os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		log.Fatal().Err(err).Str("socket", socketPath).Msg("listen failed")
	}
	log.Info().Str("socket", socketPath).Msg("listening")

	for {
		c, err := ln.Accept()
		if err != nil {
			continue
		}
		go handleConn(c)
	}
}

func argInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func handleConn(c net.Conn) {
	defer func() {
		releaseOwner(c)
		c.Close()
	}()

	log.Debug().Msg("client connected")
	sc := bufio.NewScanner(c)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		cmd := strings.ToUpper(parts[0])
		arg := ""
		if len(parts) == 2 {
			arg = strings.TrimSpace(parts[1])
		}

		// ==================================================
		// READ-ONLY COMMANDS (no owner needed)
		// ==================================================
		switch cmd {

		case "ABOUT":
			fmt.Fprintf(c, "%s V.%d.%d\n", server_name, version_major, version_minor)
			continue

		case "PING":
			c.Write([]byte("Pong\n"))
			continue

		case "WHOAMI":
			if isOwner(c) {
				c.Write([]byte("OWNER\n"))
			} else {
				c.Write([]byte("OBSERVER\n"))
			}
			continue

		case "STATUS":
			idx, p := activePlayer()
			resp := map[string]interface{}{
				"player":  idx,
				"track":   p.engine.CurrentTrack(),
				"playing": p.engine.Playing(),
				"ready":   p.loader.Ready(),
			}
			j, _ := json.Marshal(resp)
			c.Write(append(j, '\n'))
			continue

		case "LIST-PLAYERS":
			var out []map[string]interface{}
			for i, p := range players {
				out = append(out, map[string]interface{}{
					"index":        i,
					"title":        p.decl.Title,
					"total_tracks": p.loader.Count(),
					"ready":        p.loader.Ready(),
				})
			}
			j, _ := json.Marshal(out)
			c.Write(append(j, '\n'))
			continue

		case "LIST-TRACKS":
			pi, ok := argInt(arg)
			if !ok || pi < 0 || pi >= len(players) {
				c.Write([]byte("ERR ARG\n"))
				continue
			}
			p := players[pi]

			var tracks []map[string]interface{}
			for t := 0; t < p.loader.Count(); t++ {
				st := p.loader.Status(t)
				entry := map[string]interface{}{
					"index": t,
					"title": p.loader.Track(t).Title,
					"state": st.State.String(),
					"mime":  st.Mime,
					"uri":   st.URI,
				}
				if st.Reason != 0 {
					entry["reason"] = st.Reason.String()
				}
				if buf := p.loader.Buffer(t); buf != nil {
					entry["duration"] = float64(buf.Len()) / float64(spec.SampleRate)
				}
				tracks = append(tracks, entry)
			}
			j, _ := json.Marshal(tracks)
			c.Write(append(j, '\n'))
			continue

		case "READOUT":
			args := strings.Fields(arg)
			if len(args) != 2 {
				c.Write([]byte("ERR ARG\n"))
				continue
			}
			pi, ok1 := argInt(args[0])
			ti, ok2 := argInt(args[1])
			if !ok1 || !ok2 || pi < 0 || pi >= len(players) {
				c.Write([]byte("ERR ARG\n"))
				continue
			}
			buf := players[pi].loader.Buffer(ti)
			if buf == nil {
				c.Write([]byte("ERR TRACK_NOT_LOADED\n"))
				continue
			}

			bars := render.Levels(buf, 100)
			levels := make([]int, len(bars))
			for i, b := range bars {
				levels[i] = int(b)
			}
			resp := map[string]interface{}{
				"levels":   levels,
				"spectrum": render.Spectrum(buf, 32),
			}
			j, _ := json.Marshal(resp)
			c.Write(append(j, '\n'))
			continue
		}

		// ==================================================
		// CONTROL COMMANDS (owner required)
		// ==================================================
		if !claimOwner(c) {
			c.Write([]byte("ERR CONTROL_LOCKED\n"))
			continue
		}

		switch cmd {

		case "PLAY":
			idx, p := activePlayer()
			if arg != "" {
				pi, ok := argInt(arg)
				if !ok {
					c.Write([]byte("ERR ARG\n"))
					continue
				}
				np, ok := setActive(pi)
				if !ok {
					c.Write([]byte("ERR PLAYER_RANGE\n"))
					continue
				}
				idx, p = pi, np
			}
			if err := p.engine.Play(); err != nil {
				log.Warn().Int("player", idx).Err(err).Msg("play refused")
				c.Write([]byte("ERR " + err.Error() + "\n"))
				continue
			}
			c.Write([]byte("Playing\n"))

		case "SELECT":
			ti, ok := argInt(arg)
			if !ok {
				c.Write([]byte("ERR ARG\n"))
				continue
			}
			_, p := activePlayer()
			if err := p.engine.SelectTrack(ti); err != nil {
				c.Write([]byte("ERR TRACK_RANGE\n"))
				continue
			}
			c.Write([]byte("OK\n"))

		case "STOP":
			_, p := activePlayer()
			p.engine.Stop()
			c.Write([]byte("Stopped\n"))

		case "RELOAD":
			args := strings.Fields(arg)
			if len(args) != 2 {
				c.Write([]byte("ERR ARG\n"))
				continue
			}
			pi, ok1 := argInt(args[0])
			ti, ok2 := argInt(args[1])
			if !ok1 || !ok2 || pi < 0 || pi >= len(players) {
				c.Write([]byte("ERR ARG\n"))
				continue
			}
			go players[pi].loader.Load(context.Background(), ti)
			c.Write([]byte("Reloading\n"))

		default:
			c.Write([]byte("ERR UNKNOWN\n"))
		}
	}
}
