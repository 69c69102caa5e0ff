// Retention - Customer churn risk, segmentation and retention actions.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

// Command artifacts imports model bundles into the artifact repository and
// lists what is stored.
//
// Usage:
//
//	go run ./cmd/artifacts -file models/segmentation.yaml
//	go run ./cmd/artifacts -list -name customer-segmentation
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/opensource-finance/retention/internal/domain"
	"github.com/opensource-finance/retention/internal/model"
	"github.com/opensource-finance/retention/internal/repository"
)

func main() {
	file := flag.String("file", "", "Bundle file to import (.yaml, .yml or .json)")
	driver := flag.String("driver", "", "Repository driver: sqlite or postgres (default from config)")
	name := flag.String("name", "", "Override the bundle name")
	version := flag.String("version", "", "Override the bundle version")
	list := flag.Bool("list", false, "List stored versions instead of importing")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := domain.LoadConfig(".env")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	repoCfg := cfg.Repository
	if *driver != "" {
		repoCfg.Driver = *driver
	}

	repo, err := repository.New(repoCfg)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *list {
		listName := *name
		if listName == "" {
			listName = cfg.Model.Name
		}
		if err := listArtifacts(ctx, repo, listName); err != nil {
			slog.Error("failed to list artifacts", "error", err)
			os.Exit(1)
		}
		return
	}

	if *file == "" {
		fmt.Println("Usage: artifacts -file models/segmentation.yaml [-driver sqlite] [-name n] [-version v]")
		fmt.Println("       artifacts -list [-name n]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	artifact, err := importBundle(ctx, repo, *file, *name, *version)
	if err != nil {
		slog.Error("import failed", "file", *file, "error", err)
		os.Exit(1)
	}

	slog.Info("bundle imported",
		"name", artifact.Name,
		"version", artifact.Version,
		"driver", repoCfg.Driver,
	)
}

// importBundle validates a bundle file and stores it. Name and version
// overrides replace the values declared in the file.
func importBundle(ctx context.Context, repo domain.ArtifactRepository, path, name, version string) (*domain.ModelArtifact, error) {
	bundle, err := model.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if name != "" {
		bundle.Name = name
	}
	if version != "" {
		bundle.Version = version
	}
	if bundle.Name == "" || bundle.Version == "" {
		return nil, fmt.Errorf("bundle name and version are required")
	}

	artifact, err := bundle.ToArtifact()
	if err != nil {
		return nil, err
	}
	if err := repo.SaveArtifact(ctx, artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

func listArtifacts(ctx context.Context, repo domain.ArtifactRepository, name string) error {
	artifacts, err := repo.ListArtifacts(ctx, name)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tFORMAT\tCREATED")
	for _, a := range artifacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Name, a.Version, a.Format, a.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
