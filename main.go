// api-graph - endpoint graph pipeline
//
// Usage:
//   api-graph fetch [--only current|legacy|all]
//   api-graph build [--no-synth-examples]
//   api-graph probe
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"api-graph/internal/config"
	"api-graph/internal/dataset"
	"api-graph/internal/fetcher"
	"api-graph/internal/graph"
	"api-graph/internal/logger"
	"api-graph/internal/parser"
	"api-graph/internal/probe"
)

func main() {
	app := &cli.App{
		Name:  "api-graph",
		Usage: "Fetch published OpenAPI specs and build an endpoint graph dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/config.yaml",
				Usage:   "Path to config file",
				EnvVars: []string{"API_GRAPH_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			fetchCommand(),
			buildCommand(),
			probeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download the spec documents and store them verbatim",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "only",
				Value: "all",
				Usage: "Which spec to download (current, legacy, all)",
			},
		},
		Action: runFetch,
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build the endpoint dataset and graph artifact from the stored specs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-synth-examples",
				Usage: "Do not synthesize response examples from schemas",
			},
		},
		Action: runBuild,
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:   "probe",
		Usage:  "Call the safe subset of live endpoints and archive their responses",
		Action: runProbe,
	}
}

func runFetch(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	only := c.String("only")
	sources := cfg.Specs
	if only != "all" {
		sources = nil
		for _, src := range cfg.Specs {
			if src.Name == only {
				sources = append(sources, src)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("unknown spec %q", only)
		}
	}

	f := fetcher.NewFetcher(cfg.DataDir, time.Duration(cfg.Fetch.Timeout)*time.Second)
	return f.FetchAll(context.Background(), sources)
}

func runBuild(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	docs := make([]*parser.Document, 0, len(cfg.Specs))
	for _, src := range cfg.Specs {
		doc, err := parser.LoadFile(src.Name, filepath.Join(cfg.DataDir, src.File))
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	builder := dataset.NewBuilder(!c.Bool("no-synth-examples"))
	records := builder.Build(docs)

	if err := dataset.WriteDataset(cfg.DatasetPath(), records); err != nil {
		return err
	}
	fmt.Printf("wrote %s (endpoints=%d)\n", cfg.DatasetPath(), len(records))

	info := make(map[string]graph.DocInfo, len(docs))
	for _, doc := range docs {
		if doc.Doc.Info != nil {
			info[doc.Name] = graph.DocInfo{Title: doc.Doc.Info.Title, Version: doc.Doc.Info.Version}
		}
	}

	g := graph.Build(records, uuid.NewString(), info)
	if err := g.Write(cfg.GraphPath()); err != nil {
		return err
	}
	fmt.Printf("wrote %s (nodes=%d, edges=%d)\n", cfg.GraphPath(), len(g.Nodes), len(g.Edges))
	return nil
}

func runProbe(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.Probe.BaseURL == "" {
		return fmt.Errorf("probe base URL is not configured (set probe.base_url or API_BASE_URL)")
	}

	records, err := dataset.LoadDataset(cfg.DatasetPath())
	if err != nil {
		return err
	}
	targets := probe.CallTargets(records)
	fmt.Printf("Will call %d endpoints (safe auto-call subset)\n", len(targets))

	ctx := context.Background()
	timeout := time.Duration(cfg.Probe.Timeout) * time.Second

	token := cfg.Probe.Auth.AccessToken
	if token == "" && cfg.Probe.Auth.ClientID != "" {
		token, err = probe.Authenticate(ctx, &http.Client{Timeout: timeout}, cfg.Probe.BaseURL, cfg.Probe.Auth)
		if err != nil {
			return err
		}
	}

	runLog, err := logger.NewLogger(cfg.Probe.LogDir, "probe")
	if err != nil {
		return err
	}
	defer runLog.Close()
	runLog.Printf("run %s: %d targets", uuid.NewString(), len(targets))

	runner := probe.NewRunner(probe.Config{
		BaseURL:    cfg.Probe.BaseURL,
		Timeout:    timeout,
		MaxWorkers: cfg.Probe.MaxWorkers,
		Retry: probe.RetryConfig{
			Attempts: cfg.Probe.Retry.Attempts,
			Delay:    time.Duration(cfg.Probe.Retry.Delay) * time.Second,
		},
	}, probe.NewArchive(cfg.ResponsesPath()), token, runLog)

	results := runner.Run(ctx, targets)

	ok, fail := 0, 0
	for _, result := range results {
		if result.OK() {
			ok++
			fmt.Printf("%s %s -> %d (saved %s)\n", result.Method, result.Endpoint, result.Status, result.Saved)
		} else {
			fail++
			if result.Err != nil {
				fmt.Printf("%s %s -> ERROR: %v\n", result.Method, result.Endpoint, result.Err)
			} else {
				fmt.Printf("%s %s -> %d\n", result.Method, result.Endpoint, result.Status)
			}
		}
	}
	fmt.Printf("Done. ok=%d fail=%d\n", ok, fail)
	return nil
}
