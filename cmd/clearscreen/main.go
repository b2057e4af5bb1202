package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/vkngwrapper/clearscreen/internal/app"
	"github.com/vkngwrapper/clearscreen/internal/config"
	"github.com/vkngwrapper/clearscreen/internal/logger"
)

func main() {
	runtime.LockOSThread()

	configPath := flag.String("config", "", "path to a YAML config file")
	validation := flag.Bool("validation", true, "enable the Khronos validation layer")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "validation" {
			cfg.Validation = *validation
		}
	})
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	err = app.New(cfg, log).Run()
	if err != nil {
		log.Error("clearscreen failed", "error", err)
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
