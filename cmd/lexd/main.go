package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"opscenter/lex/internal/api"
	"opscenter/lex/internal/config"
	"opscenter/lex/internal/convlog"
	"opscenter/lex/internal/events"
	"opscenter/lex/internal/interpreter"
	"opscenter/lex/internal/prefs"
	"opscenter/lex/internal/uiws"
	"opscenter/lex/internal/voice"
	"opscenter/lex/internal/voices"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	cfg := config.Load()

	dataDir := cfg.Data.Dir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("resolve home dir: %v", err)
		}
		dataDir = filepath.Join(home, ".lex")
	}

	db, err := convlog.Open(dataDir)
	if err != nil {
		log.Fatalf("open conversation store: %v", err)
	}
	defer db.Close()
	cl := convlog.NewStore(db)

	pf, err := prefs.Open(filepath.Join(dataDir, "settings.json"))
	if err != nil {
		log.Fatalf("open preferences: %v", err)
	}

	bus := events.NewBus(500)
	sel := voices.NewSelector(pf, cfg.Voice.Lang)

	reg := uiws.NewRegistry()
	engines := uiws.NewEngines(reg, sel, cfg.Voice.Lang)

	interp := interpreter.New(cfg.Interpreter.APIKey, cfg.Interpreter.Model)
	if !interp.Ready() {
		log.Printf("[lexd] OPENAI_API_KEY not set; commands will get the apology reply")
	}

	orch := voice.New(engines, engines, interp, cl, events.NewSink(bus), voice.Config{
		Lang:               cfg.Voice.Lang,
		SilenceWindow:      time.Duration(cfg.Voice.SilenceWindowMS) * time.Millisecond,
		InterpreterTimeout: time.Duration(cfg.Interpreter.TimeoutMS) * time.Millisecond,
		RestartDelay:       time.Duration(cfg.Voice.RestartDelayMS) * time.Millisecond,
		SettleDelay:        time.Duration(cfg.Voice.SettleDelayMS) * time.Millisecond,
		Rate:               cfg.Voice.Rate,
		Pitch:              cfg.Voice.Pitch,
	})

	h := api.NewHandlers(cfg, orch, bus, cl, sel, db)
	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(h))
	mux.Handle("/metrics", promhttp.Handler())

	wss := uiws.NewServer(cfg, reg, engines, orch, bus)
	mux.HandleFunc("/ws/worker", wss.HandleWorkerWS)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Printf("shutdown signal received; stopping server...")
		orch.CancelSpeech()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("lexd starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
