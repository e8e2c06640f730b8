/*
 * Copyright (c) 2026 elpescado.
 * This software is part of the Reamp Player project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

const (
	socket_file   = "/tmp/reamp-server.sock"
	version_major = 1
	version_minor = 0
	app_name      = "Reamp-Client"
)

func main() {
	socketPath := flag.String("socket", socket_file, "server socket")
	flag.Parse()

	fmt.Printf("\n%s V.%d.%d\n", app_name, version_major, version_minor)

	conn, err := net.Dial("unix", *socketPath)
	if err != nil {
		fmt.Println("CONNECT ERROR:", err)
		os.Exit(1)
	}
	defer conn.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "reamp> ",
		HistoryLimit:    200,
		InterruptPrompt: "^C",
	})
	if err != nil {
		fmt.Println("READLINE ERROR:", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("CONNECTED")
	fmt.Println("Type IPC command, press Enter")
	fmt.Println(`Type "QUIT" to exit`)
	fmt.Println()

	// ============================
	// IPC -> STDOUT (server push)
	// ============================
	go func() {
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, "EVENT ") {
				fmt.Fprintln(rl.Stdout(), "<< "+line)
			} else {
				fmt.Fprintln(rl.Stdout(), line)
			}
		}
		fmt.Fprintln(rl.Stdout(), "SOCKET CLOSED")
		os.Exit(0)
	}()

	// ============================
	// STDIN -> IPC (interactive)
	// ============================
	for {
		line, err := rl.Readline()
		if err != nil {
			// ^C or ^D
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			fmt.Println("Bye.")
			return
		}
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			fmt.Println("WRITE ERROR:", err)
			os.Exit(1)
		}
	}
}
