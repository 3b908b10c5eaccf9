// Command query runs ranked OR/AND queries from a query file (or stdin)
// against a built index, one line of output per query whose request can be
// built (a query without term ids is logged and skipped), and optionally
// wires the query cache, metrics, audit log, and event publisher.
// Grounded on the teacher's cmd/searcher/main.go shape (flag -conf, load
// config, log.Init, build an Option, drive the engine).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/tddhit/blockidx/auditlog"
	"github.com/tddhit/blockidx/config"
	"github.com/tddhit/blockidx/index"
	"github.com/tddhit/blockidx/memsrc"
	"github.com/tddhit/blockidx/metrics"
	"github.com/tddhit/blockidx/query"
	"github.com/tddhit/blockidx/queryevents"
	"github.com/tddhit/blockidx/querycache"
	"github.com/tddhit/blockidx/queryreader"
	"github.com/tddhit/blockidx/score"
)

var (
	confPath   string
	queryPath  string
	k          int
	driverName string
)

func init() {
	flag.StringVar(&confPath, "conf", "query.yml", "config file")
	flag.StringVar(&queryPath, "queries", "", "query file (colon or JSON lines); empty means stdin")
	flag.IntVar(&k, "k", 10, "number of results per query")
	flag.StringVar(&driverName, "driver", "or", "ranked driver: or | and")
}

func main() {
	flag.Parse()

	conf, err := config.Load(confPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	initLogging(conf)

	src, err := memsrc.OpenFile(conf.IndexPath)
	if err != nil {
		slog.Error("opening index file", "path", conf.IndexPath, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	idx, err := index.Open(src)
	if err != nil {
		slog.Error("parsing index", "error", err)
		os.Exit(1)
	}
	defer idx.Close()

	var m *metrics.Metrics
	if conf.MetricsAddr != "" {
		m = metrics.New()
		shutdown := metrics.StartServer(conf.MetricsAddr)
		defer shutdown(context.Background())
	}

	var cache *querycache.Cache
	if conf.Redis.Addr != "" {
		cache, err = querycache.New(querycache.Options{Addr: conf.Redis.Addr, DB: conf.Redis.DB, TTL: time.Minute})
		if err != nil {
			slog.Warn("query cache unavailable, continuing without it", "error", err)
		} else {
			defer cache.Close()
		}
	}

	var audit *auditlog.Store
	if conf.Postgres.DSN != "" {
		audit, err = auditlog.Open(auditlog.Options{DSN: conf.Postgres.DSN})
		if err != nil {
			slog.Warn("audit log unavailable, continuing without it", "error", err)
		} else {
			if err := audit.EnsureSchema(context.Background()); err != nil {
				slog.Warn("audit log schema setup failed", "error", err)
			}
			defer audit.Close()
		}
	}

	var events *queryevents.Publisher
	if len(conf.Kafka.Brokers) > 0 && conf.Kafka.Topic != "" {
		events = queryevents.NewPublisher(conf.Kafka.Brokers, conf.Kafka.Topic)
		defer events.Close()
	}

	reader, err := openReader(queryPath)
	if err != nil {
		slog.Error("opening query source", "error", err)
		os.Exit(1)
	}
	defer reader.Close()

	stats := score.CollectionStats{NumDocs: idx.NumDocs(), AvgDocLength: 1}
	flags := query.DefaultFlags()

	for {
		q, ok, err := reader.Next()
		if err != nil {
			slog.Error("reading query", "error", err)
			os.Exit(1)
		}
		if !ok {
			break
		}
		if cache != nil {
			hit := cache.ApplyThresholdHint(context.Background(), &q, k)
			if m != nil {
				if hit {
					m.CacheHitsTotal.Inc()
				} else {
					m.CacheMissTotal.Inc()
				}
			}
		}
		runQuery(idx, q, k, driverName, stats, flags, m, cache, audit, events)
	}
}

func initLogging(conf *config.Config) {
	level := slog.LevelInfo
	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	var handler slog.Handler
	if conf.LogPath == "" || conf.LogPath == "stderr" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		f, err := os.OpenFile(conf.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		} else {
			handler = slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
		}
	}
	slog.SetDefault(slog.New(handler))
}

func openReader(path string) (*queryreader.Reader, error) {
	if path == "" {
		return queryreader.FromStdin(), nil
	}
	return queryreader.FromFile(path)
}
