package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peterhaneve/ONIMods-sub014/internal/kernel"
	"github.com/peterhaneve/ONIMods-sub014/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to modhost config.toml")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg := kernel.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadHostConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "modhost: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := kernel.New(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "modhost: %v\n", err)
		os.Exit(1)
	}
}
