package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OverlayEditor/internal/config"
	"OverlayEditor/internal/editor"
	"OverlayEditor/internal/export"
	overlaynet "OverlayEditor/internal/net"
	"OverlayEditor/internal/ui"
)

const (
	WindowTitle = "Text Overlay Editor"
	// Page size of the applied overlay PDF.
	PageWidth  = 1280
	PageHeight = 720
)

func main() {
	cfg := config.Default()
	if err := cfg.FromEnv(os.Getenv); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Quiet {
		log.SetOutput(io.Discard)
	}

	if cfg.Discover {
		runDiscover()
		return
	}

	opts := editorOptions(cfg)
	switch cfg.Mode {
	case config.ModeServe:
		runServe(cfg, opts)
	default:
		runDesktop(opts)
	}
}

func editorOptions(cfg config.Config) editor.Options {
	compositor := export.NewCompositor(cfg.OutputDir, PageWidth, PageHeight)
	return editor.Options{
		LayerWidth:      cfg.LayerWidthEstimate,
		LayerHeight:     cfg.LayerHeightEstimate,
		DuplicateOffset: cfg.DuplicateOffset,
		OnSave:          compositor.SaveFunc(time.Now),
	}
}

func runDesktop(opts editor.Options) {
	log.Println("Starting in DESKTOP mode")
	opts.OnClose = func() { log.Println("[EDITOR] Desktop editor dismissed") }
	ui.RunApp(WindowTitle, editor.New(opts))
}

func runServe(cfg config.Config, opts editor.Options) {
	log.Println("Starting in SERVE mode")
	srv := overlaynet.NewServer(opts)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Advertise {
		mdnsServer, err := overlaynet.Advertise(cfg.Port)
		if err != nil {
			log.Printf("[MDNS] Advertising disabled: %v", err)
		} else {
			defer mdnsServer.Shutdown()
		}
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Println("Shutting down")
		_ = httpServer.Close()
	}()

	fmt.Printf("Surfaces connect at %s\n", overlaynet.ShareURL(cfg.Port))
	log.Printf("Listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runDiscover() {
	n := 0
	err := overlaynet.Browse(3*time.Second, func(addr string) {
		n++
		fmt.Printf("ws://%s/ws\n", addr)
	})
	if err != nil {
		log.Fatalf("[MDNS] Browse failed: %v", err)
	}
	if n == 0 {
		fmt.Println("No editors found on the local network")
	}
}
