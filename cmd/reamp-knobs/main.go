/*
 * Copyright (c) 2026 elpescado.
 * This software is part of the Reamp Player project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/elpescado/reamp-player/internal/manifest"
	"github.com/elpescado/reamp-player/internal/render"
)

// reamp-knobs renders a track's rig settings to a knob-strip PNG, for
// pages that want a static picture instead of a live canvas.
func main() {
	manifestPath := flag.String("manifest", "", "host page with embedded player payloads")
	playerIdx := flag.Int("player", 0, "player index on the page")
	trackIdx := flag.Int("track", 0, "track index within the player")
	outPath := flag.String("out", "knobs.png", "output PNG path")
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: reamp-knobs -manifest page.html [-player N] [-track N] [-out knobs.png]")
		os.Exit(2)
	}

	players, err := manifest.DiscoverFile(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "manifest: %v\n", err)
		os.Exit(1)
	}
	if *playerIdx < 0 || *playerIdx >= len(players) {
		fmt.Fprintf(os.Stderr, "player %d out of range, page has %d\n", *playerIdx, len(players))
		os.Exit(1)
	}
	p := players[*playerIdx]
	if *trackIdx < 0 || *trackIdx >= len(p.Tracks) {
		fmt.Fprintf(os.Stderr, "track %d out of range, player has %d\n", *trackIdx, len(p.Tracks))
		os.Exit(1)
	}

	track := p.Tracks[*trackIdx]
	if len(track.Settings) == 0 {
		fmt.Fprintf(os.Stderr, "track %q declares no settings\n", track.Title)
		os.Exit(1)
	}

	w, h := render.StripSize(len(track.Settings))
	png, err := render.EncodePNG(render.Knobs(track.Settings), w, h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, png, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d knobs, %dx%d\n", *outPath, len(track.Settings), w, h)
}
