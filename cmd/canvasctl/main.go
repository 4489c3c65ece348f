// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// canvasctl is the operator CLI for a running canvas sync service. It
// talks to the service's admin unix socket, not the public HTTP
// surface, so it works even when the HTTP side is unreachable or
// firewalled.
//
// Subcommands:
//
//	status        counter position, object count, live connections
//	snapshot      dump the full canvas document as JSON
//	reset         wipe canvas state and restart the sequence counter
//	inject-image  place an image object on the canvas
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/canvas-foundation/canvas/lib/canvas"
	"github.com/canvas-foundation/canvas/lib/config"
	"github.com/canvas-foundation/canvas/lib/service"
	"github.com/canvas-foundation/canvas/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var socketPath string
	var asJSON bool

	flagSet := pflag.NewFlagSet("canvasctl", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", config.DefaultSocketPath(), "admin socket path")
	flagSet.BoolVar(&asJSON, "json", false, "print raw JSON instead of a summary")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("canvasctl")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(flagSet)
		return fmt.Errorf("missing subcommand")
	}

	switch args[0] {
	case "status":
		return runStatus(socketPath, asJSON)
	case "snapshot":
		return runSnapshot(socketPath)
	case "reset":
		return runReset(socketPath)
	case "inject-image":
		return runInjectImage(socketPath, args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Canvas sync service operator CLI.

Usage:
  canvasctl [flags] <subcommand>

Subcommands:
  status                  show counter position, object count, connections
  snapshot                dump the full canvas document as JSON
  reset                   wipe canvas state and restart the counter
  inject-image [url ...]  place an image on the canvas; with no urls the
                          service picks a random uploaded image

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// The result types mirror the service's admin responses. Defined here
// because the server-side types live in the service binary; the wire
// format is the contract.

type statusResult struct {
	SequenceID    uint64   `json:"sequence_id"`
	ObjectCount   int      `json:"object_count"`
	Connections   []string `json:"connections"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}

type snapshotResult struct {
	Objects    []canvas.Object `json:"objects"`
	SequenceID uint64          `json:"sequence_id"`
}

type injectResult struct {
	SequenceID uint64   `json:"sequence_id"`
	URLs       []string `json:"urls"`
}

func runStatus(socketPath string, asJSON bool) error {
	var status statusResult
	if err := service.CallInto(socketPath, map[string]any{"action": "status"}, &status); err != nil {
		return err
	}

	if asJSON {
		return printJSON(status)
	}
	fmt.Printf("sequence:    %d\n", status.SequenceID)
	fmt.Printf("objects:     %d\n", status.ObjectCount)
	fmt.Printf("uptime:      %ds\n", status.UptimeSeconds)
	fmt.Printf("connections: %d\n", len(status.Connections))
	for _, id := range status.Connections {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

func runSnapshot(socketPath string) error {
	var snapshot snapshotResult
	if err := service.CallInto(socketPath, map[string]any{"action": "snapshot"}, &snapshot); err != nil {
		return err
	}
	return printJSON(snapshot)
}

func runReset(socketPath string) error {
	if _, err := service.Call(socketPath, map[string]any{"action": "reset"}); err != nil {
		return err
	}
	fmt.Println("canvas reset")
	return nil
}

func runInjectImage(socketPath string, urls []string) error {
	var result injectResult
	request := map[string]any{"action": "inject-image", "urls": urls}
	if err := service.CallInto(socketPath, request, &result); err != nil {
		return err
	}
	fmt.Printf("injected at sequence %d:\n", result.SequenceID)
	for _, url := range result.URLs {
		fmt.Printf("  %s\n", url)
	}
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
