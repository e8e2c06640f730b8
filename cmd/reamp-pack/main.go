/*
 * Copyright (c) 2026 elpescado.
 * This software is part of the Reamp Player project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elpescado/reamp-player/internal/codec"
	"github.com/elpescado/reamp-player/internal/security"

	"github.com/chzyer/readline"
)

const (
	version_major = 1
	version_minor = 0
	app_name      = "Reamp-Pack"
)

// reamp-pack seals a 48 kHz stereo wav rendition into a .rmp asset,
// the self-contained format the server decodes without a host codec.
func main() {
	wavPath, destFolder, title := runPackInterview()

	in, err := os.Open(wavPath)
	if err != nil {
		fmt.Printf("[FAIL] cannot read wav: %v\n", err)
		return
	}
	defer in.Close()

	password, err := security.RandomPassword()
	if err != nil {
		fmt.Printf("[FAIL] cannot generate password: %v\n", err)
		return
	}

	base := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	finalPath := filepath.Join(destFolder, base+".rmp")

	f, err := os.Create(finalPath)
	if err != nil {
		fmt.Printf("[FAIL] cannot create asset: %v\n", err)
		return
	}

	fmt.Printf("\n[START] SEALING: %s\n", title)

	meta, err := codec.WriteSealed(f, in, password, title)
	if err != nil {
		f.Close()
		os.Remove(finalPath)
		fmt.Printf("[FAIL] seal failed: %v\n", err)
		return
	}

	f.Sync()
	f.Close()

	fmt.Printf(" >> %d frames, %.1f seconds\n", meta.Frames, meta.Duration)
	fmt.Printf("\n[SUCCESS] Asset Sealed: %s\n", finalPath)
}

func runPackInterview() (string, string, string) {
	rl, _ := readline.NewEx(&readline.Config{Prompt: ">> "})
	defer rl.Close()

	fmt.Printf("\n%s version %d.%d\n", app_name, version_major, version_minor)
	w := ask(rl, "1. Source WAV Path (48 kHz stereo)", "rendition.wav")
	d := ask(rl, "2. Destination Folder (must exist)", ".")
	t := ask(rl, "3. Track Title", strings.TrimSuffix(filepath.Base(w), filepath.Ext(w)))

	return w, d, t
}

func ask(rl *readline.Instance, prompt, def string) string {
	rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, def))
	line, _ := rl.Readline()
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
