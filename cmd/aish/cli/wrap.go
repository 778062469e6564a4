package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aishell/cli/cmd/aish/cli/category"
	"github.com/aishell/cli/cmd/aish/cli/dialog"
	"github.com/aishell/cli/cmd/aish/cli/intercept"
	"github.com/aishell/cli/cmd/aish/cli/logging"
	"github.com/aishell/cli/cmd/aish/cli/mux"
	"github.com/aishell/cli/cmd/aish/cli/router"
	"github.com/aishell/cli/cmd/aish/cli/settings"
	"github.com/aishell/cli/cmd/aish/cli/shellsession"
	"github.com/aishell/cli/cmd/aish/cli/translate"
)

type wrapOptions struct {
	shell       string
	endpoint    string
	noTranslate bool
	logLevel    string
}

// runWrap is the whole wrapper lifecycle. Everything that can fail before
// the terminal enters raw mode fails cleanly with a diagnostic; after raw
// mode, every exit path funnels through Shutdown so the saved terminal
// mode is restored exactly once.
func runWrap(ctx context.Context, opts *wrapOptions) (int, error) {
	cfg, err := settings.Load()
	if err != nil {
		return 1, err
	}
	applyFlags(cfg, opts)

	// Fatal-setup checks happen before any terminal-mode change.
	shellPath, err := shellsession.ResolveShell(cfg.Shell)
	if err != nil {
		return 1, err
	}

	store, err := openCategoryStore()
	if err != nil {
		return 1, err
	}

	var translator intercept.Translator
	var explainer dialog.Explainer
	if cfg.Endpoint != "" {
		client, cerr := translate.New(cfg.Endpoint,
			translate.WithTimeout(cfg.TranslateTimeout()),
			translate.WithCacheTTL(cfg.CacheTTL()),
		)
		if cerr != nil {
			return 1, cerr
		}
		translator = client
		explainer = client.Explain
	}

	routes := router.NewLocalRouter()
	registerDirectives(routes, store)

	ic := intercept.New(translator, routes, cfg.TranslationEnabled(), cfg.TranslateTimeout())

	sess, err := shellsession.Start(shellPath)
	if err != nil {
		return 1, err
	}

	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if lerr := logging.Init(ctx, sess.ID); lerr != nil {
		// Logging falls back to stderr for warnings; not fatal.
		fmt.Fprintf(os.Stderr, "aish: logging disabled: %v\r\n", lerr)
	}
	defer logging.Close()

	logCtx := logging.WithComponent(ctx, "wrap")
	logging.Info(logCtx, "session started",
		slog.String("shell", shellPath),
		slog.Bool("translation", cfg.TranslationEnabled()),
	)

	eng := mux.NewEngine(mux.Config{
		Terminal:        os.Stdout,
		PTY:             sess.PTY(),
		Interceptor:     ic,
		Categories:      store,
		DefaultCategory: defaultCategory(cfg),
		Dispatcher:      nil, // no isolated-session collaborator wired yet
		Routes:          routes,
		Explainer:       explainer,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopResize := sess.WatchResize(runCtx)
	defer stopResize()

	// Interrupts with a dialog open resolve the dialog as cancelled;
	// otherwise they route to the session-exit path.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			if sig == os.Interrupt && eng.Interrupt() {
				continue
			}
			logging.Info(logCtx, "terminating on signal", slog.String("signal", sig.String()))
			cancel()
			return
		}
	}()

	runErr := mux.Run(runCtx, os.Stdin, os.Stdout, sess.PTY(), eng)

	code, restoreErr := sess.Shutdown()
	if restoreErr != nil {
		// Fatal-runtime: the user's terminal could not be restored.
		logging.Error(logCtx, "terminal restore failed", slog.Any("error", restoreErr))
		fmt.Fprintf(os.Stderr, "aish: FATAL: %v\n", restoreErr)
		return 1, nil
	}
	if runErr != nil && runCtx.Err() == nil {
		logging.Error(logCtx, "multiplexer error", slog.Any("error", runErr))
	}

	logging.Info(logCtx, "session ended", slog.Int("exit_code", code))
	return code, nil
}

func applyFlags(cfg *settings.Settings, opts *wrapOptions) {
	if opts.shell != "" {
		cfg.Shell = opts.shell
	}
	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.noTranslate {
		disabled := false
		cfg.TranslateEnabled = &disabled
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
}

func defaultCategory(cfg *settings.Settings) category.Kind {
	k, err := category.Parse(cfg.DefaultCategory)
	if err != nil {
		return category.Simple
	}
	return k
}

func openCategoryStore() (*category.FileStore, error) {
	dir, err := settings.Dir()
	if err != nil {
		return nil, err
	}
	return category.OpenFileStore(filepath.Join(dir, "commands.toml"))
}
