// File: cmd/rhubarb/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// rhubarb entry point. `rhubarb server` listens and echoes; `rhubarb
// client` connects, performs the opening handshake, then pumps stdin
// lines to the server and prints whatever comes back.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/momentics/rhubarb-ws/client"
	"github.com/momentics/rhubarb-ws/logging"
	"github.com/momentics/rhubarb-ws/server"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4024", "bind address (server) or target address (client)")
	path := flag.String("path", "/ws", "resource path for the client handshake")
	configPath := flag.String("config", "", "optional TOML config file (server)")
	flag.Parse()

	addrSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "addr" {
			addrSet = true
		}
	})

	logger := logging.New("rhubarb")

	switch flag.Arg(0) {
	case "server":
		cfg := server.DefaultConfig()
		if *configPath != "" {
			loaded, err := server.LoadConfig(*configPath)
			if err != nil {
				logger.Fatal().Err(err).Msg("config load failed")
			}
			cfg = loaded
		}
		if addrSet {
			cfg.ListenAddr = *addr
		}
		l, err := server.New(cfg, server.WithLogger(logger))
		if err != nil {
			logger.Fatal().Err(err).Msg("bind failed")
		}
		if err := l.Listen(); err != nil {
			logger.Fatal().Err(err).Msg("listener failed")
		}

	case "client":
		c, err := client.Dial(*addr)
		if err != nil {
			logger.Fatal().Err(err).Msg("dial failed")
		}
		defer c.Close()
		if err := c.PerformHandshake(*path); err != nil {
			logger.Fatal().Err(err).Msg("handshake failed")
		}

		go func() {
			for {
				data, err := c.Recv()
				if err != nil {
					logger.Error().Err(err).Msg("receive failed")
					os.Exit(1)
				}
				fmt.Print(string(data))
			}
		}()

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := c.Send(append(scanner.Bytes(), '\n')); err != nil {
				logger.Fatal().Err(err).Msg("send failed")
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Fatal().Err(err).Msg("stdin read failed")
		}

	default:
		fmt.Fprintln(os.Stderr, "usage: rhubarb [flags] server|client")
		flag.PrintDefaults()
		os.Exit(2)
	}
}
