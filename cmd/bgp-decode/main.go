// SPDX-License-Identifier: MIT

// Command bgp-decode reads a file of back-to-back BGP-4 messages and prints
// one summary line per message, stopping at the first decode error.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"netcore/pkg/bgp"
)

const version = "0.1.0"

type config struct {
	inputPath   string
	showVersion bool
}

func parseFlags(args []string) *config {
	fs := flag.NewFlagSet("bgp-decode", flag.ExitOnError)

	cfg := &config{}
	fs.StringVar(&cfg.inputPath, "in", "", "Path to a file of concatenated BGP-4 messages")
	fs.BoolVar(&cfg.showVersion, "version", false, "Show version")
	fs.Parse(args)

	if cfg.showVersion {
		fmt.Printf("bgp-decode version %s\n", version)
		os.Exit(0)
	}
	if cfg.inputPath == "" {
		fmt.Fprintln(os.Stderr, "bgp-decode: -in is required")
		fs.Usage()
		os.Exit(1)
	}
	return cfg
}

func summarize(msg bgp.Message) string {
	switch {
	case msg.Open != nil:
		return fmt.Sprintf("OPEN as=%d hold=%d id=%s params=%d",
			msg.Open.MyAS, msg.Open.HoldTime, msg.Open.BGPIdentifier, len(msg.Open.OptParams))
	case msg.Update != nil:
		return fmt.Sprintf("UPDATE withdrawn=%d attrs=%d nlri=%d",
			len(msg.Update.Withdrawn), len(msg.Update.PathAttributes), len(msg.Update.NLRI))
	case msg.Notification != nil:
		return fmt.Sprintf("NOTIFICATION code=%d subcode=%d data=%dB",
			msg.Notification.ErrorCode, msg.Notification.ErrorSubcode, len(msg.Notification.Data))
	case msg.Keepalive != nil:
		return "KEEPALIVE"
	default:
		return "?"
	}
}

func main() {
	cfg := parseFlags(os.Args[1:])

	data, err := os.ReadFile(cfg.inputPath)
	if err != nil {
		log.Fatalf("reading %s: %v", cfg.inputPath, err)
	}

	rest := data
	count := 0
	for len(rest) > 0 {
		next, msg, err := bgp.Decode(rest)
		if err != nil {
			log.Fatalf("message %d: %v", count+1, err)
		}
		fmt.Printf("%4d  %s\n", count+1, summarize(msg))
		rest = next
		count++
	}

	log.Printf("decoded %d message(s)", count)
}
