// Command builder freezes a plain-text postings file into the on-disk
// block-compressed index format. Grounded on the teacher's cmd/builder/
// main.go shape (flag -conf, load config, build, dump); the index encoding
// itself comes from index.StreamBuilder (spec.md §5's background-flush
// stream-builder path).
package main

import (
	"bufio"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tddhit/blockidx/config"
	"github.com/tddhit/blockidx/index"
	"github.com/tddhit/blockidx/params"
)

var (
	confPath     string
	postingsPath string
	numDocs      uint64
)

func init() {
	flag.StringVar(&confPath, "conf", "builder.yml", "config file")
	flag.StringVar(&postingsPath, "postings", "", "plain-text postings file: one line per term, \"docid:freq docid:freq ...\" in ascending docid order")
	flag.Uint64Var(&numDocs, "numdocs", 0, "collection size; 0 infers from the highest docid seen")
}

func main() {
	flag.Parse()

	conf, err := config.Load(confPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	initLogging(conf)

	if postingsPath == "" {
		slog.Error("-postings is required")
		os.Exit(1)
	}

	lists, inferredNumDocs, err := readPostingsFile(postingsPath)
	if err != nil {
		slog.Error("reading postings file", "error", err)
		os.Exit(1)
	}
	n := numDocs
	if n == 0 {
		n = inferredNumDocs
	}

	p := params.Default()
	if conf.Codec == "raw" {
		p.Codec = params.CodecRaw
	}
	if conf.BlockSize != 0 {
		p.BlockSize = conf.BlockSize
	}

	sb, err := index.NewStreamBuilder(n, p)
	if err != nil {
		slog.Error("creating stream builder", "error", err)
		os.Exit(1)
	}
	for i, list := range lists {
		if err := sb.AddPostingList(list.docIDs, list.freqs); err != nil {
			slog.Error("adding posting list", "term_id", i, "error", err)
			os.Exit(1)
		}
	}
	if err := sb.Build(conf.IndexPath); err != nil {
		slog.Error("freezing index", "error", err)
		os.Exit(1)
	}
	slog.Info("index built", "path", conf.IndexPath, "lists", len(lists), "num_docs", n)
}

type postingList struct {
	docIDs []uint32
	freqs  []uint32
}

func readPostingsFile(path string) ([]postingList, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var lists []postingList
	var maxDocID uint64
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		list := postingList{docIDs: make([]uint32, 0, len(fields)), freqs: make([]uint32, 0, len(fields))}
		for _, field := range fields {
			docID, freq, err := splitPosting(field)
			if err != nil {
				return nil, 0, err
			}
			list.docIDs = append(list.docIDs, docID)
			list.freqs = append(list.freqs, freq)
			if uint64(docID) > maxDocID {
				maxDocID = uint64(docID)
			}
		}
		lists = append(lists, list)
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return lists, maxDocID + 1, nil
}

func splitPosting(field string) (docID, freq uint32, err error) {
	idx := strings.IndexByte(field, ':')
	if idx < 0 {
		return 0, 0, strconvError(field)
	}
	d, err := strconv.ParseUint(field[:idx], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	f, err := strconv.ParseUint(field[idx+1:], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(d), uint32(f), nil
}

func strconvError(field string) error {
	return &strconv.NumError{Func: "splitPosting", Num: field, Err: strconv.ErrSyntax}
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
