package cli

import (
	"bufio"
	"context"
	"os"
	"sync"
	"time"

	"github.com/avolkovs/surveydesk/internal/client/config"
	"github.com/avolkovs/surveydesk/internal/client/gateway"
	"github.com/avolkovs/surveydesk/internal/client/services"
	"github.com/avolkovs/surveydesk/internal/client/session"
	"github.com/avolkovs/surveydesk/internal/client/tokenstore"
	"github.com/avolkovs/surveydesk/internal/logging"
)

// Mode reflects backend reachability as seen by the periodic probe.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// App wires the CLI together: gateway, token store, session manager and the
// per-resource services.
type App struct {
	config  *config.Config
	api     gateway.Client
	tokens  *tokenstore.File
	manager *session.Manager
	surveys services.SurveyService
	records services.RecordService
	files   services.FileService
	assist  services.AssistService
	log     logging.Logger
	reader  *bufio.Reader

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(c *config.Config, log logging.Logger) *App {
	api := gateway.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, log)
	tokens := tokenstore.NewFile(c.TokenFile)
	manager := session.NewManager(api, tokens, log)

	return &App{
		config:  c,
		api:     api,
		tokens:  tokens,
		manager: manager,
		surveys: services.NewSurveyService(api, manager),
		records: services.NewRecordService(api, manager),
		files:   services.NewFileService(api, manager, c.StorageBucket),
		assist:  services.NewAssistService(api, manager),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}
}

// Run starts the background workers and enters the REPL. Bootstrap runs
// concurrently; protected commands wait for it through the access guard.
func (a *App) Run(ctx context.Context) {
	defer a.manager.Close()

	go a.manager.Bootstrap(ctx)

	if err := a.manager.StartTokenWatcher(ctx, a.tokens); err != nil {
		a.log.Warn(ctx, "token watcher unavailable", "error", err)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

// CurrentMode reports the reachability seen by the last probe; empty until
// the first probe completes.
func (a *App) CurrentMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher periodically probes the backend and flips Mode
// accordingly.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
