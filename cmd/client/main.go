package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gostones/csvupload/internal"
	"github.com/gostones/csvupload/internal/config"
	"github.com/gostones/csvupload/internal/upload"
)

type CLI struct {
	File        string        `arg:"" optional:"" help:"CSV file to upload."`
	BaseURL     string        `help:"Base URL of the presign endpoint." default:"${base_url}"`
	PresignPath string        `help:"Path of the presign endpoint." default:"${presign_path}"`
	Timeout     time.Duration `help:"Transport timeout, 0 for none." default:"${timeout}"`
	LogLevel    string        `help:"Diagnostics level." enum:"debug,info,warn,error" default:"${log_level}"`
	LogFormat   string        `help:"Diagnostics format." enum:"text,json" default:"${log_format}"`
}

// pathProvider selects the file at path, or nothing when path is empty.
type pathProvider string

func (p pathProvider) Selected() (*internal.SelectedFile, error) {
	if p == "" {
		return nil, nil
	}
	return internal.OpenSelectedFile(string(p))
}

func newParser(cli *CLI, cfg *config.Config, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("csvupload"),
		kong.Description("Upload a CSV file through a presigned URL."),
		kong.UsageOnError(),
		kong.Vars{
			"base_url":     cfg.Uploader.BaseURL,
			"presign_path": cfg.Uploader.PresignPath,
			"timeout":      cfg.Uploader.Timeout.String(),
			"log_level":    cfg.Log.Level,
			"log_format":   cfg.Log.Format,
		},
	}, opts...)
	return kong.New(cli, opts...)
}

func (c *CLI) logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// Run performs one upload activation, writing the log to out and diagnostics to diag.
func (c *CLI) Run(ctx context.Context, out, diag io.Writer) upload.State {
	logger := c.logger(diag)
	log := upload.NewLineLog(out)
	h := upload.New(pathProvider(c.File), log, upload.NewClient(c.BaseURL, c.Timeout),
		upload.WithLogger(logger),
		upload.WithPresignPath(c.PresignPath),
	)
	state := h.Run(ctx)
	if err := log.Err(); err != nil {
		logger.Error("writing log", "error", err)
	}
	logger.Debug("activation finished", "state", state.String())
	return state
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(2)
	}

	var cli CLI
	parser, err := newParser(&cli, cfg)
	if err != nil {
		panic(err)
	}
	_, err = parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if cli.Run(context.Background(), os.Stdout, os.Stderr) == upload.StateError {
		os.Exit(1)
	}
}
