package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/TanaroSch/portal-shortcuts/internal/app"
	"github.com/TanaroSch/portal-shortcuts/internal/config"
)

const version = "v0.3.0"

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	log.Printf("Portal Shortcuts %s starting...", version)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	application, err := app.New(cfg, version)
	if err != nil {
		log.Fatalf("Error starting application: %v", err)
	}

	// Handle any panics during execution
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	// Run the application
	application.Run()
}
