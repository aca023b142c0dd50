// Command cityfill is a terminal version of the US cities quiz.
//
// Usage:
//
//	go run ./cmd/cityfill [-difficulty medium] [-store ~/.cityfill] [-redis localhost:6379]
//
// Type a city per line. Lines starting with ':' are commands:
//
//	:stats             show circles, revealed cities and coverage
//	:reset             start over
//	:dataset 30k|50k   switch the city dataset
//	:difficulty NAME   mega, easy, medium or hard
//	:quit              exit
//
// Settings may also come from a .env file: CITYFILL_DIFFICULTY,
// CITYFILL_DATA_DIR, CITYFILL_STORE_DIR, REDIS_ADDR, REDIS_PASSWORD,
// REDIS_DB, CITYFILL_REDIS_PREFIX, CITYFILL_METRICS_ADDR,
// CITYFILL_LOG_LEVEL.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andreiashu/cityfill"
	"github.com/andreiashu/cityfill/internal/logger"
)

func main() {
	_ = godotenv.Load(".env")
	log := logger.Setup()

	difficulty := flag.String("difficulty", envOr("CITYFILL_DIFFICULTY", "medium"), "circle size: mega, easy, medium or hard")
	dataDir := flag.String("data", envOr("CITYFILL_DATA_DIR", "./cityfill-data"), "directory overriding the embedded data")
	storeDir := flag.String("store", os.Getenv("CITYFILL_STORE_DIR"), "directory for saved progress (empty keeps progress in memory)")
	redisAddr := flag.String("redis", os.Getenv("REDIS_ADDR"), "redis address for saved progress; takes precedence over -store")
	redisPrefix := flag.String("redis-prefix", envOr("CITYFILL_REDIS_PREFIX", "cityfill:"), "redis key prefix")
	metricsAddr := flag.String("metrics", os.Getenv("CITYFILL_METRICS_ADDR"), "serve prometheus metrics on this address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []cityfill.Option{
		cityfill.WithDataDir(*dataDir),
		cityfill.WithLogger(log),
	}

	switch {
	case *redisAddr != "":
		db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		store := cityfill.OpenRedisStore(*redisAddr, os.Getenv("REDIS_PASSWORD"), db, *redisPrefix)
		defer store.Close()
		opts = append(opts, cityfill.WithStore(store))
	case *storeDir != "":
		opts = append(opts, cityfill.WithStore(cityfill.NewFileStore(*storeDir)))
	}

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := cityfill.NewMetrics(reg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, cityfill.WithMetrics(m))
		srv := serveMetrics(*metricsAddr, reg, log)
		defer srv.Close()
	}

	session, events, err := cityfill.Start(ctx, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	g := &game{
		session: session,
		radius:  cityfill.ParseDifficulty(*difficulty).RadiusMeters(),
		out:     &renderer{w: os.Stdout},
	}
	g.out.render(events)
	fmt.Fprintln(os.Stdout, session.Stats())

	if err := g.run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", "error", err)
		}
	}()
	return srv
}

// game reads one line at a time and applies it to the session.
type game struct {
	session *cityfill.Session
	radius  float64
	out     *renderer
}

func (g *game) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(g.out.w, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := g.command(ctx, line[1:]); quit {
				return nil
			}
			continue
		}
		g.guess(ctx, line)
	}
}

func (g *game) guess(ctx context.Context, text string) {
	out := g.session.SubmitGuess(ctx, text, g.radius)
	if out.Rejected {
		fmt.Fprintf(g.out.w, "Couldn't find that city. Try \"City, ST\".\n")
		return
	}
	g.out.render(out.Events)
	if out.Placed == 0 {
		fmt.Fprintf(g.out.w, "Already guessed.\n")
	}
	fmt.Fprintln(g.out.w, g.session.Stats())
}

func (g *game) command(ctx context.Context, line string) (quit bool) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "quit", "q":
		return true
	case "stats":
		fmt.Fprintln(g.out.w, g.session.Stats())
	case "reset":
		g.out.render(g.session.Reset(ctx))
		fmt.Fprintln(g.out.w, g.session.Stats())
	case "dataset":
		cutoff, err := cityfill.ParseCutoff(arg)
		if err != nil {
			fmt.Fprintf(g.out.w, "Datasets are 50k and 30k.\n")
			return false
		}
		events, err := g.session.SelectCutoff(ctx, cutoff)
		if err != nil {
			fmt.Fprintf(g.out.w, "Error: %v\n", err)
			return false
		}
		g.out.render(events)
		fmt.Fprintln(g.out.w, g.session.Stats())
	case "difficulty":
		d := cityfill.ParseDifficulty(arg)
		g.radius = d.RadiusMeters()
		fmt.Fprintf(g.out.w, "Difficulty: %s (%.0f km)\n", d, g.radius/1000)
	default:
		fmt.Fprintf(g.out.w, "Unknown command %q\n", name)
	}
	return false
}
