package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"moviecatalog/proj/internal/browse"
	"moviecatalog/proj/internal/clients/catalog"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/lib/tasks"
	"moviecatalog/proj/internal/lib/validator"
)

func main() {
	debug := flag.Bool("debug", false, "verbose logging")
	fullScan := flag.Bool("full-scan", false, "reconcile by scanning the first page instead of fetching by id")
	flag.Parse()

	cfg := config.MustLoadClient()
	log := logger.Discard()
	if *debug {
		log = logger.SetupLogger(true)
	}

	client := catalog.New(log, cfg.BaseURL, cfg.Timeout, cfg.Retries)
	ctrl := browse.NewController(log, client, cfg.PageSize, 5)
	rec := browse.NewReconciler(log, ctrl, client, client)
	rec.FullScan = *fullScan
	pool := tasks.New(log, cfg.Workers, cfg.QueueSize)
	pool.Run()
	session := browse.NewSession(log, ctrl, rec, pool, cfg.Timeout*time.Duration(cfg.Retries+1))

	r := &repl{
		session:  session,
		client:   client,
		validate: validator.New(),
		out:      os.Stdout,
		done:     make(chan struct{}),
	}
	go r.printEvents()

	fmt.Fprintf(os.Stdout, "connected to %s, type \"help\" for commands\n", cfg.BaseURL)
	if err := session.ApplyQuery(r.query); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if !r.exec(scanner.Text()) {
			break
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := session.Close(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	<-r.done
}
