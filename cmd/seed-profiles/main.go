package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/circlemate/matchmaker/internal/testprofiles"
)

// Default configuration constants.
const (
	defaultNumProfiles  = 200
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultPollInterval = 250 * time.Millisecond
	defaultWaitTimeout  = time.Minute
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		profiles   = flag.Int("profiles", defaultNumProfiles, "Number of candidate profiles to generate")
		reference  = flag.String("reference", "", "Existing reference profile id (default: generate one)")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait       = flag.Duration("wait", defaultWaitTimeout, "How long to wait for the recompute to publish")
		outputFile = flag.String("output", "", "Output file for generated profiles (default: generated_profiles_TIMESTAMP.json)")
		seed       = flag.Uint64("seed", 0, "Generator seed (default: from the clock)")
		logFormat  = flag.String("log-format", "console", "json or console")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testprofiles.ShowHelp()
		return
	}

	if err := testprofiles.SetupLogging(*logFormat, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &testprofiles.Config{
		BaseURL:      *baseURL,
		NumProfiles:  *profiles,
		ReferenceID:  *reference,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: defaultPollInterval,
		WaitTimeout:  *wait,
		OutputFile:   *outputFile,
		Seed:         *seed,
		Verbose:      *verbose,
	}

	if _, err := testprofiles.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
