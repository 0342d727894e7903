package main

import (
	"flag"
	"log"

	"github.com/peterhaneve/ONIMods-sub014/internal/config"
)

func main() {
	kind := flag.String("kind", "host", "config kind: host|ops")
	output := flag.String("output", "cmd/modhost/config.toml", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "cmd/modhost/config.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.LoadHostConfig(*input)
		if err != nil {
			log.Fatal(err)
		}
		runtime, err := cfg.Runtime()
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s (host_id=%s mods=%d)", *input, runtime.HostID, len(runtime.Mods))
		return
	}

	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, *output)
}
