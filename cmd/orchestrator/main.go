// Command orchestrator is a terminal REPL over the research/code/energy/
// vision/digest pipeline: read a line, run it through internal/turn, print
// the answer. Implements a top-level read-eval-print loop with
// slash-command dispatch.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/cache"
	"github.com/nvlabs/deepwatch/internal/config"
	"github.com/nvlabs/deepwatch/internal/conversation"
	"github.com/nvlabs/deepwatch/internal/events"
	"github.com/nvlabs/deepwatch/internal/newsroom"
	"github.com/nvlabs/deepwatch/internal/registry"
	"github.com/nvlabs/deepwatch/internal/search"
	"github.com/nvlabs/deepwatch/internal/specialists"
	"github.com/nvlabs/deepwatch/internal/store"
	"github.com/nvlabs/deepwatch/internal/tools"
	"github.com/nvlabs/deepwatch/internal/turn"
	"github.com/nvlabs/deepwatch/internal/workflow"
)

const systemPrompt = "You are a local research and development orchestrator. Route each request to the right specialist and answer concisely."

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", r)
			os.Exit(1)
		}
	}()
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		os.Exit(130)
	}()

	configPath := flag.String("config", "orchestrator.yaml", "path to the orchestrator config file")
	storeDir := flag.String("store", "./data/research", "directory for persisted deep-research documents")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (falling back to defaults)\n", err)
		cfg = config.Default()
	}

	logger := agent.NewStdLogger(agent.LogLevelInfo)
	bus := events.NewBus(256, logger)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	reg := registry.New()
	tools.RegisterAll(reg)

	callers := specialists.NewCaller(cfg, os.Stdout)
	specialists.RegisterAll(reg, callers)

	searchTools := &search.Tools{
		Brave: search.NewBraveClient(cfg.Brave.Token),
		Core:  search.NewCoreClient(cfg.Core.APIKey),
		Cache: cache.NewInMemory(512),
	}
	searchTools.RegisterTools(reg)

	dispatcher := registry.NewDispatcher(reg, bus)
	session := registry.NewSession(cwd)
	conv := conversation.New(systemPrompt)

	processor := turn.NewProcessor(conv, dispatcher, session, callers)

	newsroomClient := newsroom.NewClient(cfg.Newsroom.BaseURL, cfg.Newsroom.Token, logger)
	research := &workflow.Research{
		Dispatcher:  dispatcher,
		Session:     session,
		Specialists: callers,
		Newsroom:    newsroomClient,
		Bus:         bus,
	}
	processor.Research = research

	absStoreDir, err := filepath.Abs(*storeDir)
	if err != nil {
		absStoreDir = *storeDir
	}
	if docStore, err := store.New(absStoreDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: deep research persistence disabled: %v\n", err)
	} else {
		processor.DeepResearch = &workflow.DeepResearch{Research: research, Store: docStore}
	}

	processor.Digest = &workflow.Digest{Newsroom: newsroomClient, Specialists: callers}
	processor.Develop = &workflow.Develop{Specialists: callers, WorkingDir: cwd}

	runREPL(processor)
}

func runREPL(processor *turn.Processor) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Println("Orchestrator ready. Type a request, or /research, /deep, /digest, /develop, /code, /qa, /energy, /image, /vision, /academic <request>. Ctrl-D to exit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		forced, rest := parseSlashCommand(line)
		result, err := processor.Process(context.Background(), rest, forced)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(result)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
		os.Exit(1)
	}
}

// parseSlashCommand splits a leading "/command " off line, returning the
// command name (empty if none) and the remainder.
func parseSlashCommand(line string) (string, string) {
	if !strings.HasPrefix(line, "/") {
		return "", line
	}
	fields := strings.SplitN(line[1:], " ", 2)
	command := fields[0]
	rest := ""
	if len(fields) > 1 {
		rest = strings.TrimSpace(fields[1])
	}
	return command, rest
}
