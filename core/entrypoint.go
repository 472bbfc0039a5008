package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"reflect"
	"syscall"

	"github.com/encodeous/lsr/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

var ErrShutdown = errors.New("received shutdown signal")

// DebugAddr, if set, serves /debug/metrics and /debug/vars.
var DebugAddr string

func setupDebugging(log *slog.Logger) {
	if DebugAddr == "" {
		return
	}
	go func() {
		log.Info("serving debug endpoints", "addr", DebugAddr)
		err := http.ListenAndServe(DebugAddr, nil)
		if err != nil {
			log.Error("debug server stopped", "err", err)
		}
	}()
}

// NewLogger writes coloured output to stderr, and to logPath as well if it is not empty.
func NewLogger(prefix string, logLevel slog.Level, logPath string) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        logLevel,
			AddSource:    false,
			CustomPrefix: prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
	}
	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// New validates the configuration and brings up a router. Nothing touches the network if the configuration is invalid.
// The router runs until Run returns.
func New(lcfg state.LocalCfg, tcfg state.TopologyCfg, logger *slog.Logger, aux map[string]any) (*state.State, error) {
	err := state.LocalConfigValidator(&lcfg, &tcfg)
	if err != nil {
		return nil, err
	}
	host, err := state.ResolveHost(lcfg.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host %q: %w", lcfg.Host, err)
	}
	if aux == nil {
		aux = make(map[string]any)
	}
	labels := state.NewLabels(tcfg.TotalNodes)
	if logger == nil {
		logger, err = NewLogger(labels.Of(lcfg.Id), slog.LevelInfo, lcfg.LogPath)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	s := state.NewState(&state.Env{
		LocalCfg:    lcfg,
		TopologyCfg: tcfg,
		Labels:      labels,
		HostIP:      host,
		Context:     ctx,
		Cancel:      cancel,
		Log:         logger,
		AuxConfig:   aux,
	})

	s.Log.Info("init modules")
	err = initModules(s)
	if err != nil {
		Stop(s)
		return nil, err
	}
	s.Log.Info("init modules complete")
	return s, nil
}

func initModules(s *state.State) error {
	router := &LinkStateRouter{}
	if w, ok := s.AuxConfig["report"].(io.Writer); ok {
		router.Output = w
	}
	var modules []state.NyModule
	modules = append(modules, router)
	modules = append(modules, &Disseminator{})
	modules = append(modules, &ControlServer{})

	for _, module := range modules {
		s.Modules[reflect.TypeOf(module).String()] = module
		if err := module.Init(s); err != nil {
			return err
		}
	}
	return nil
}

// Start runs a router until it receives SIGINT or SIGTERM.
func Start(lcfg state.LocalCfg, tcfg state.TopologyCfg, logLevel slog.Level) error {
	logger, err := NewLogger(state.NewLabels(max(tcfg.TotalNodes, 0)).Of(lcfg.Id), logLevel, lcfg.LogPath)
	if err != nil {
		return err
	}
	setupDebugging(logger)
	s, err := New(lcfg, tcfg, logger, map[string]any{"report": os.Stdout})
	if err != nil {
		return err
	}

	s.Log.Info("Router has been initialized. To gracefully exit, send SIGINT or Ctrl+C.", "id", s.Id, "label", s.Label())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			s.Cancel(ErrShutdown)
		case <-s.Context.Done():
		}
	}()

	return Run(s)
}

// Run blocks until the router's context is cancelled, then stops it.
func Run(s *state.State) error {
	s.Log.Debug("router running")
	<-s.Context.Done()
	cause := context.Cause(s.Context)
	s.Log.Info("stopping router", "reason", cause.Error())
	err := Stop(s)
	if errors.Is(cause, ErrShutdown) || errors.Is(cause, context.Canceled) {
		return err
	}
	return cause
}

// Stop closes the datagram endpoint and waits for every task to exit.
func Stop(s *state.State) error {
	s.Cancel(context.Canceled)
	s.Log.Info("cleaning up modules")
	for moduleName, module := range s.Modules {
		err := module.Cleanup(s)
		if err != nil {
			s.Log.Error("error occurred during Stop: ", "module", moduleName, "error", err)
		}
	}
	err := s.Wait()
	s.Log.Info("stopped")
	return err
}
