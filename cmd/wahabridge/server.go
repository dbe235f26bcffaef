package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/wahax/entry"
	"github.com/Abraxas-365/wahax/errx"
	"github.com/Abraxas-365/wahax/eventx"
	"github.com/Abraxas-365/wahax/logx"
	"github.com/Abraxas-365/wahax/notify"
	"github.com/Abraxas-365/wahax/waha"
	"github.com/Abraxas-365/wahax/webhook"
)

type server struct {
	config   *daemonConfig
	store    entry.Store
	bus      *eventx.Bus
	setup    *entry.SetupFlow
	options  *entry.OptionsFlow
	receiver *webhook.Receiver

	// baseCtx bounds the lifetime of background monitors, so they stop with
	// the server and not only on entry deletion
	baseCtx context.Context

	mutex    sync.Mutex
	clients  map[string]waha.MessagingClient
	monitors map[string]context.CancelFunc
}

func runServer(ctx context.Context, config *daemonConfig) error {
	store, err := entry.NewFileStore(config.storePath)
	if err != nil {
		return err
	}

	bus := eventx.NewBus()
	s := &server{
		config:   config,
		store:    store,
		bus:      bus,
		setup:    entry.NewSetupFlow(store, nil),
		options:  entry.NewOptionsFlow(store),
		receiver: webhook.NewReceiver(bus),
		clients:  make(map[string]waha.MessagingClient),
		monitors: make(map[string]context.CancelFunc),
	}

	bus.Subscribe(webhook.EventMessageReceived, logInboundMessage)
	bus.Subscribe(waha.EventStatusChanged, logStatusChange)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	s.baseCtx = ctx

	app := fiber.New(fiber.Config{
		AppName:               "wahabridge",
		DisableStartupMessage: true,
	})
	s.routes(app)

	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, configEntry := range entries {
		s.startMonitor(configEntry)
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info("Listening on %s (%d entries)", config.listenAddr, len(entries))
		errCh <- app.Listen(config.listenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logx.Info("Shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func (s *server) routes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/entries", s.handleCreateEntry)
	api.Get("/entries", s.handleListEntries)
	api.Delete("/entries/:id", s.handleDeleteEntry)
	api.Patch("/entries/:id/options", s.handleUpdateOptions)
	api.Get("/entries/:id/status", s.handleEntryStatus)
	api.Post("/notify", s.handleNotify)
	api.Post("/send", s.handleSend)

	s.receiver.SetEnabled(true)
	app.Post("/webhook/:entry", s.handleWebhook)
}

func (s *server) handleCreateEntry(c *fiber.Ctx) error {
	var input entry.SetupInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	created, err := s.setup.Submit(c.UserContext(), input)
	if err != nil {
		return renderFormError(c, err)
	}

	s.registerEntryWebhook(c.UserContext(), *created)
	s.startMonitor(*created)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// registerEntryWebhook asks the WAHA server to deliver inbound messages to
// this daemon's per-entry webhook route. Best effort: the entry works for
// outbound sends even when registration fails.
func (s *server) registerEntryWebhook(ctx context.Context, configEntry entry.ConfigEntry) {
	if s.config.publicURL == "" {
		logx.Debug("No public_url configured, skipping webhook registration for entry %s", configEntry.ID)
		return
	}

	webhookURL := strings.TrimRight(s.config.publicURL, "/") + "/webhook/" + configEntry.ID
	if err := s.clientFor(configEntry).RegisterWebhook(ctx, webhookURL); err != nil {
		logx.Warn("Webhook registration failed for entry %s: %v", configEntry.ID, err)
	}
}

func (s *server) handleListEntries(c *fiber.Ctx) error {
	entries, err := s.store.List(c.UserContext())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(entries)
}

func (s *server) handleDeleteEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Delete(c.UserContext(), id); err != nil {
		return renderError(c, err)
	}

	s.mutex.Lock()
	delete(s.clients, id)
	if cancel, ok := s.monitors[id]; ok {
		cancel()
		delete(s.monitors, id)
	}
	s.mutex.Unlock()

	logx.Info("Removed entry %s", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) handleUpdateOptions(c *fiber.Ctx) error {
	var input entry.OptionsInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	updated, err := s.options.UpdateOptions(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return renderFormError(c, err)
	}

	// Session may have changed, rebuild the client on next use
	s.mutex.Lock()
	delete(s.clients, updated.ID)
	s.mutex.Unlock()

	return c.JSON(updated)
}

func (s *server) handleEntryStatus(c *fiber.Ctx) error {
	configEntry, err := s.store.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}

	status, err := s.clientFor(configEntry).SessionStatus(c.UserContext())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"session": configEntry.SessionName,
		"status":  status,
	})
}

type notifyRequest struct {
	EntryID string   `json:"entry_id"`
	Message string   `json:"message"`
	Target  string   `json:"target"`
	Targets []string `json:"targets"`
}

func (s *server) handleNotify(c *fiber.Ctx) error {
	var req notifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	configEntry, err := s.resolveEntry(c.UserContext(), req.EntryID)
	if err != nil {
		return renderError(c, err)
	}

	targets := req.Targets
	if req.Target != "" {
		targets = append(targets, req.Target)
	}

	service := notify.NewService(s.clientFor(configEntry), configEntry.DefaultRecipients)
	report, err := service.Send(c.UserContext(), req.Message, targets...)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(report)
}

type sendRequest struct {
	EntryID string `json:"entry_id"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (s *server) handleSend(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	configEntry, err := s.resolveEntry(c.UserContext(), req.EntryID)
	if err != nil {
		return renderError(c, err)
	}

	service := notify.NewService(s.clientFor(configEntry), nil)
	receipt, err := service.SendDirect(c.UserContext(), req.Phone, req.Message)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(receipt)
}

func (s *server) handleWebhook(c *fiber.Ctx) error {
	if _, err := s.store.FindByID(c.UserContext(), c.Params("entry")); err != nil {
		return renderError(c, err)
	}
	return s.receiver.Handle(c)
}

// resolveEntry finds the entry a request addresses. Without an explicit ID a
// single configured entry is unambiguous; anything else is an error.
func (s *server) resolveEntry(ctx context.Context, id string) (entry.ConfigEntry, error) {
	if id != "" {
		return s.store.FindByID(ctx, id)
	}

	entries, err := s.store.List(ctx)
	if err != nil {
		return entry.ConfigEntry{}, err
	}
	switch len(entries) {
	case 1:
		return entries[0], nil
	case 0:
		return entry.ConfigEntry{}, errx.New("no WAHA server configured", errx.TypeNotFound)
	default:
		return entry.ConfigEntry{}, errx.New("entry_id required when multiple servers are configured", errx.TypeBadRequest)
	}
}

func (s *server) clientFor(configEntry entry.ConfigEntry) waha.MessagingClient {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if client, ok := s.clients[configEntry.ID]; ok {
		return client
	}
	client := waha.NewClient(waha.Config{
		BaseURL:     configEntry.BaseURL,
		APIKey:      configEntry.APIKey,
		SessionName: configEntry.SessionName,
		RateLimit:   s.config.rateLimit,
	})
	s.clients[configEntry.ID] = client
	return client
}

func (s *server) startMonitor(configEntry entry.ConfigEntry) {
	interval, err := time.ParseDuration(s.config.pollInterval)
	if err != nil || interval <= 0 {
		interval = 30 * time.Second
	}

	monitorCtx, cancel := context.WithCancel(s.baseCtx)
	s.mutex.Lock()
	s.monitors[configEntry.ID] = cancel
	s.mutex.Unlock()

	monitor := waha.NewStatusMonitor(s.clientFor(configEntry), s.bus, interval)
	go monitor.Run(monitorCtx)
}

func renderError(c *fiber.Ctx, err error) error {
	var e *errx.Error
	if errors.As(err, &e) {
		if e.HTTPStatus == 0 {
			switch e.Type {
			case errx.TypeNotFound:
				e.HTTPStatus = fiber.StatusNotFound
			case errx.TypeBadRequest, errx.TypeValidation:
				e.HTTPStatus = fiber.StatusBadRequest
			default:
				e.HTTPStatus = fiber.StatusInternalServerError
			}
		}
		return e.ToFiber(c)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

func renderFormError(c *fiber.Ctx, err error) error {
	var e *errx.Error
	if errors.As(err, &e) {
		return e.WithDetail("form_key", entry.FormKey(err)).ToFiber(c)
	}
	return renderError(c, err)
}

func logInboundMessage(ctx context.Context, event eventx.Event) error {
	if message, ok := eventx.Data[webhook.InboundMessage](event); ok {
		logx.Info("Message received from %s via session %s", message.Sender, message.Session)
	}
	return nil
}

func logStatusChange(ctx context.Context, event eventx.Event) error {
	if change, ok := eventx.Data[waha.StatusChange](event); ok {
		logx.Info("Session %s is now %s", change.Session, change.Status)
	}
	return nil
}
