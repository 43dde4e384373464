// caption-cli drives the captioning pipeline from the command line: it
// validates a local image, submits it to a running relay and prints the
// caption with its statistics. When the relay is unreachable the session
// falls back to a demo caption, just like the web front end.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/caption"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/eventbus"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/image"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

func main() {
	var (
		relayURL = flag.String("relay", "", "relay base URL (default from config)")
		timeout  = flag.Duration("timeout", 0, "request timeout (default from config)")
		export   = flag.Bool("export", false, "print the result as a plain-text report")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: caption-cli [flags] <image-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *relayURL, *timeout, *export); err != nil {
		fmt.Fprintf(os.Stderr, "caption-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(path, relayURL string, timeout time.Duration, export bool) error {
	result, err := config.NewLoader().WithDotEnv(true).Load()
	if err != nil {
		return err
	}
	cfg := result.Config
	if relayURL != "" {
		cfg.Client.RelayURL = relayURL
	}
	if timeout > 0 {
		cfg.Client.Timeout = timeout
	}

	logger, err := utils.NewLogger(&utils.LogCfg{
		LogLevel: cfg.Log.Level,
		LogDir:   cfg.Log.Dir,
		LogFile:  "caption-cli.log",
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	// Notifications mirror the toasts of the web front end.
	eventbus.Subscribe(eventbus.EventSessionNotify, func(data eventbus.NotifyEventData) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", data.Level, data.Message)
	})

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))

	validator := image.NewValidator(&cfg.Upload)
	encoder := image.NewEncoder(&cfg.Upload, logger)
	client := caption.NewClient(cfg.Client, logger)
	session := caption.NewSession(validator, encoder, client, logger)

	if err := session.SelectFile(filepath.Base(path), raw, mimeType); err != nil {
		return err
	}

	captionResult, err := session.Generate(context.Background())
	if err != nil {
		return err
	}

	if export {
		text, _ := session.ExportText()
		fmt.Print(text)
		return nil
	}

	fmt.Println(captionResult.Caption)
	fmt.Printf("  confidence: %s\n", captionResult.Confidence)
	fmt.Printf("  words:      %d\n", captionResult.Words)
	if captionResult.Demo {
		fmt.Printf("  objects:    %d\n", captionResult.Objects)
		fmt.Printf("  time:       %.1fs\n", captionResult.ProcessingTime)
		fmt.Printf("  accuracy:   %d%%\n", captionResult.Accuracy)
		fmt.Println("  source:     demo (relay unavailable)")
	}
	return nil
}
