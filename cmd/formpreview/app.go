package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/cli/browser"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formpreview/internal/config"
	"github.com/goliatone/go-formpreview/internal/logging"
	"github.com/goliatone/go-formpreview/internal/server"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/openapi"
	"github.com/goliatone/go-formpreview/pkg/orchestrator"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/renderers/tui"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla"
	"github.com/goliatone/go-formpreview/pkg/schema"
	"github.com/goliatone/go-formpreview/pkg/theme"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

// app holds state shared by the commands once Before has run.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	// openURL and promptDriver are replaced in tests.
	openURL      func(string) error
	promptDriver tui.PromptDriver
}

func newApp() *cli.Command {
	a := &app{openURL: browser.OpenURL}
	return a.command()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "formpreview",
		Usage: "edit a JSON form schema and preview the form it describes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars(config.EnvPath),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "auto, text or json",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.serveCommand(),
			a.renderCommand(),
			a.fillCommand(),
			a.validateCommand(),
			a.openapiCommand(),
			a.themeCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}
	a.cfg = cfg.Defaults()

	errWriter := cmd.Root().ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	logger, err := logging.New(errWriter, a.cfg.Logging())
	if err != nil {
		return ctx, err
	}
	a.logger = logger
	slog.SetDefault(logger)
	return ctx, nil
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the split-pane preview in the browser",
		Description: "The editor's Copy button writes to the clipboard of the machine running\n" +
			"this command, so it only reaches your own clipboard when the server runs locally.",
		ArgsUsage: "[schema.json]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
			&cli.BoolFlag{Name: "open", Usage: "open the preview in the default browser"},
			&cli.BoolFlag{Name: "sanitize", Usage: "strip markup from submitted values before logging"},
			&cli.DurationFlag{Name: "notice-duration", Usage: "how long the success notice stays visible"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := a.cfg
			if cmd.IsSet("addr") {
				cfg.Addr = cmd.String("addr")
			}
			if cmd.IsSet("sanitize") {
				cfg.Sanitize = cmd.Bool("sanitize")
			}
			if cmd.IsSet("notice-duration") {
				cfg.NoticeDuration = cmd.Duration("notice-duration")
			}

			text, err := a.schemaText(ctx, cmd)
			if err != nil {
				return err
			}

			var sink preview.Sink = preview.LogSink{Logger: a.logger}
			if cfg.Sanitize {
				sink = preview.NewSanitizingSink(sink)
			}
			opts := []server.Option{
				server.WithLogger(a.logger),
				server.WithInitialText(text),
				server.WithSink(sink),
				server.WithNoticeDuration(cfg.NoticeDuration),
			}
			if mode, ok := cfg.ThemeMode(); ok {
				opts = append(opts, server.WithDefaultMode(mode))
			}
			srv, err := server.New(opts...)
			if err != nil {
				return err
			}

			if cmd.Bool("open") {
				go a.openWhenReady(ctx, cfg.Addr)
			}
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}
}

// openWhenReady opens the browser once the listener accepts connections.
func (a *app) openWhenReady(ctx context.Context, addr string) {
	url := "http://" + browsableAddr(addr) + "/"
	for attempt := 0; attempt < 50; attempt++ {
		conn, err := net.DialTimeout("tcp", browsableAddr(addr), 100*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			if err := a.openURL(url); err != nil {
				a.logger.Warn("could not open browser", "url", url, "error", err)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	a.logger.Warn("server did not come up, not opening browser", "url", url)
}

func browsableAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func (a *app) renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render the schema to a standalone HTML form",
		ArgsUsage: "[schema.json|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "theme", Usage: "light or dark (defaults to the saved preference)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout if empty)"},
			&cli.StringFlag{Name: "action", Usage: "form action URL"},
			&cli.StringFlag{Name: "templates", Usage: "directory whose templates/form.tmpl overrides the bundled form template"},
			&cli.StringSliceFlag{Name: "stylesheet", Usage: "stylesheet URL to link ahead of the form (repeatable)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mode, err := a.themeMode(cmd)
			if err != nil {
				return err
			}
			options := []vanilla.Option{
				vanilla.WithDefaultStyles(),
				vanilla.WithLogger(a.logger),
				vanilla.WithTemplatesDir(cmd.String("templates")),
			}
			for _, href := range cmd.StringSlice("stylesheet") {
				options = append(options, vanilla.WithStylesheet(href))
			}
			renderer, err := vanilla.New(options...)
			if err != nil {
				return err
			}
			registry := render.NewRegistry()
			registry.MustRegister(renderer)

			req, err := a.request(ctx, cmd)
			if err != nil {
				return err
			}
			req.RenderOptions.Action = cmd.String("action")

			gen := orchestrator.New(
				orchestrator.WithRegistry(registry),
				orchestrator.WithThemeMode(mode),
				orchestrator.WithLogger(a.logger),
			)
			out, err := gen.Generate(ctx, req)
			if err != nil {
				return err
			}
			return a.write(cmd, out)
		},
	}
}

func (a *app) fillCommand() *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "fill the form in the terminal and print the submission",
		ArgsUsage: "[schema.json]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: string(tui.OutputFormatJSON), Usage: "json, form or pretty"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout if empty)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format := tui.OutputFormat(cmd.String("format"))
			switch format {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			req, err := a.request(ctx, cmd)
			if err != nil {
				return err
			}
			req.Renderer = tui.Name

			renderer := tui.New(
				tui.WithPromptDriver(a.promptDriver),
				tui.WithOutputFormat(format),
				tui.WithMessageWriter(cmd.Root().ErrWriter),
				tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
				tui.WithLogger(a.logger),
			)
			gen := orchestrator.New(
				orchestrator.WithRenderer(renderer),
				orchestrator.WithLogger(a.logger),
			)
			out, err := gen.Generate(ctx, req)
			if errors.Is(err, tui.ErrAborted) {
				return cli.Exit("aborted", 130)
			}
			if err != nil {
				return err
			}
			if !strings.HasSuffix(string(out), "\n") {
				out = append(out, '\n')
			}
			return a.write(cmd, out)
		},
	}
}

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check that the schema parses and its rules compile",
		ArgsUsage: "[schema.json|-]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := a.request(ctx, cmd)
			if err != nil {
				return err
			}
			form, err := orchestrator.New(orchestrator.WithLogger(a.logger)).Schema(ctx, req)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			var problems []string
			for _, field := range form.Fields {
				if _, err := validation.Compile(field); err != nil {
					problems = append(problems, err.Error())
				}
				if field.Type.IsChoice() && len(field.Options) == 0 {
					a.logger.Warn("choice field has no options", "field", field.ID)
				}
			}
			if len(problems) > 0 {
				return cli.Exit(strings.Join(problems, "\n"), 1)
			}
			_, err = fmt.Fprintf(cmd.Root().Writer, "ok: %s (%d fields)\n", form.FormTitle, len(form.Fields))
			return err
		},
	}
}

func (a *app) openapiCommand() *cli.Command {
	return &cli.Command{
		Name:      "openapi",
		Usage:     "print the OpenAPI document describing the submission",
		ArgsUsage: "[schema.json|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Value: openapi.DefaultPath, Usage: "submission path"},
			&cli.StringSliceFlag{Name: "server", Usage: "server URL (repeatable)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout if empty)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := a.request(ctx, cmd)
			if err != nil {
				return err
			}
			form, err := orchestrator.New(orchestrator.WithLogger(a.logger)).Schema(ctx, req)
			if err != nil {
				return err
			}
			opts := []openapi.Option{openapi.WithPath(cmd.String("path"))}
			for _, url := range cmd.StringSlice("server") {
				opts = append(opts, openapi.WithServer(url))
			}
			out, err := openapi.ExportJSON(ctx, form, opts...)
			if err != nil {
				return err
			}
			return a.write(cmd, append(out, '\n'))
		},
	}
}

func (a *app) themeCommand() *cli.Command {
	return &cli.Command{
		Name:      "theme",
		Usage:     "show, set or toggle the saved theme",
		ArgsUsage: "[light|dark|toggle]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			pref := a.preference()
			arg := strings.TrimSpace(cmd.Args().First())
			switch arg {
			case "":
			case "toggle":
				if _, err := pref.Toggle(); err != nil {
					return err
				}
			default:
				mode, ok := theme.ParseMode(arg)
				if !ok {
					return fmt.Errorf("unknown theme %q", arg)
				}
				if err := pref.Set(mode); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.Root().Writer, pref.Mode())
			return err
		},
	}
}

func (a *app) preference() *theme.Preference {
	var store theme.Store
	if a.cfg.Preferences != "" {
		store = theme.NewFileStore(a.cfg.Preferences)
	}
	var signal theme.Signal = theme.EnvSignal{}
	if mode, ok := a.cfg.ThemeMode(); ok {
		dark := mode == theme.Dark
		signal = theme.SignalFunc(func() bool { return dark })
	}
	return theme.Init(store, signal, theme.WithLogger(a.logger))
}

func (a *app) themeMode(cmd *cli.Command) (theme.Mode, error) {
	if raw := cmd.String("theme"); raw != "" {
		mode, ok := theme.ParseMode(raw)
		if !ok {
			return "", fmt.Errorf("unknown theme %q", raw)
		}
		return mode, nil
	}
	return a.preference().Mode(), nil
}

// request builds an orchestrator request from the first argument, the
// configured schema file, or the default schema.
func (a *app) request(ctx context.Context, cmd *cli.Command) (orchestrator.Request, error) {
	doc, err := a.document(ctx, cmd)
	if err != nil {
		return orchestrator.Request{}, err
	}
	return orchestrator.Request{Document: &doc}, nil
}

func (a *app) schemaText(ctx context.Context, cmd *cli.Command) (string, error) {
	doc, err := a.document(ctx, cmd)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

func (a *app) document(ctx context.Context, cmd *cli.Command) (schema.Document, error) {
	path := cmd.Args().First()
	if path == "" {
		path = a.cfg.Schema
	}
	switch path {
	case "":
		return schema.NewDocument(schema.SourceInline("default"), []byte(model.DefaultSchemaText()))
	case "-":
		reader := cmd.Root().Reader
		if reader == nil {
			reader = os.Stdin
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return schema.Document{}, fmt.Errorf("read stdin: %w", err)
		}
		return schema.NewDocument(schema.SourceInline("stdin"), data)
	default:
		return schema.LoadFile(ctx, path)
	}
}

func (a *app) write(cmd *cli.Command, out []byte) error {
	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		a.logger.Info("output written", "path", path, "bytes", len(out))
		return nil
	}
	writer := cmd.Root().Writer
	if writer == nil {
		writer = os.Stdout
	}
	_, err := writer.Write(out)
	return err
}
