// Package runtime keeps live sessions in sync with chat membership and fans
// committed domain events out to them. It holds no business rules: persistence
// and identity are collaborators behind the contract interfaces.
package runtime

import (
	"chirp-hub/contract"
	"chirp-hub/domain/chat"
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"chirp-hub/observability"
	"chirp-hub/protocol"
	"chirp-hub/runtime/workers"
	"chirp-hub/services"
	"context"
	"log/slog"
	"sync"
	"time"
)

const queuePressurePercent = 80

type HubConfig struct {
	DeliveryTimeout  time.Duration
	PingInterval     time.Duration
	PongTimeout      time.Duration
	RestartInterval  time.Duration
	StatsInterval    time.Duration
	TouchOnAnyFrame  bool
	MaxContentLength int
}

// Hub wires the registry, the dispatcher, the heartbeat monitor and the
// inbound command handler under one supervisor.
type Hub struct {
	mu         sync.Mutex
	log        *slog.Logger
	cfg        HubConfig
	metrics    *observability.Metrics
	index      *MembershipIndex
	registry   *SessionRegistry
	queue      *EventQueue
	dispatcher *workers.EventDispatcher
	heartbeat  *workers.HeartbeatMonitor
	commands   *services.CommandHandler
	supervisor *workers.Supervisor
	extra      []contract.Worker
	stopped    bool
}

// NewHub builds a hub consuming queue. outbound receives the NewMessage events
// produced by live sessions: the queue itself, or a cross-instance bus feeding it.
func NewHub(log *slog.Logger, cfg HubConfig, queue *EventQueue, outbound contract.EventPublisher,
	identity contract.IdentityResolver, membership contract.MembershipSource,
	persister contract.MessagePersister, metrics *observability.Metrics) *Hub {
	index := NewMembershipIndex()
	registry := NewSessionRegistry(log, index, identity, membership, metrics)
	return &Hub{
		log:        log,
		cfg:        cfg,
		metrics:    metrics,
		index:      index,
		registry:   registry,
		queue:      queue,
		dispatcher: workers.NewEventDispatcher(log, index, registry, queue.Events(), metrics, cfg.DeliveryTimeout),
		heartbeat:  workers.NewHeartbeatMonitor(log, registry, cfg.PingInterval, cfg.PongTimeout),
		commands: services.NewCommandHandler(log, registry, index, persister, outbound,
			protocol.NewDecoder(cfg.MaxContentLength), metrics, cfg.DeliveryTimeout),
		supervisor: workers.NewSupervisor(log, cfg.RestartInterval),
	}
}

// AddWorkers registers extra workers supervised with the hub, such as a bus subscriber.
func (h *Hub) AddWorkers(w ...contract.Worker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.extra = append(h.extra, w...)
}

// Start runs every worker and blocks until ctx ends or Stop is called.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return errors.ErrHubStopped
	}
	h.supervisor.Add(h.dispatcher, h.heartbeat)
	if h.cfg.StatsInterval > 0 {
		h.supervisor.Add(
			workers.NewProcessStatsWorker(h.log, h.index, h.metrics, h.cfg.StatsInterval),
			workers.NewQueueDepthWorker(h.log, h.queue, h.metrics, h.cfg.StatsInterval, queuePressurePercent),
		)
	}
	h.supervisor.Add(h.extra...)
	h.mu.Unlock()

	h.log.Info("Starting hub and all supervised workers")
	h.supervisor.Run(ctx)
	return nil
}

// Stop refuses new connections and events, stops the workers and closes every live session.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	// Set before the snapshot below so a Connect finishing after it evicts itself.
	h.stopped = true
	h.mu.Unlock()

	h.queue.Close()
	h.supervisor.Stop()
	sessions := h.registry.Snapshot()
	for _, s := range sessions {
		h.registry.Evict(s.ID, chat.CloseShutdown, observability.EvictShutdown)
	}
	h.log.Info("Hub stopped", "closed_sessions", len(sessions))
}

func (h *Hub) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

func (h *Hub) Connect(ctx context.Context, transport chat.Transport, credential string) (chat.SessionID, error) {
	if h.isStopped() {
		_ = transport.Close(chat.CloseShutdown)
		return "", errors.ErrHubStopped
	}
	id, err := h.registry.Connect(ctx, transport, credential)
	if err != nil {
		return "", err
	}
	// Stop may have taken its snapshot while identity or memberships were loading.
	if h.isStopped() {
		h.registry.Evict(id, chat.CloseShutdown, observability.EvictShutdown)
		return "", errors.ErrHubStopped
	}
	return id, nil
}

func (h *Hub) Disconnect(sessionID chat.SessionID) {
	h.registry.Disconnect(sessionID)
}

// HandleFrame processes one inbound client frame.
func (h *Hub) HandleFrame(ctx context.Context, sessionID chat.SessionID, raw []byte) error {
	if h.cfg.TouchOnAnyFrame {
		h.registry.Touch(sessionID)
	}
	return h.commands.HandleFrame(ctx, sessionID, raw)
}

func (h *Hub) HandlePong(sessionID chat.SessionID) {
	h.registry.Touch(sessionID)
}

// Publish enqueues a committed domain event for fanout.
func (h *Hub) Publish(ctx context.Context, e event.DomainEvent) error {
	return h.queue.Publish(ctx, e)
}

// Invalidate reloads the memberships of a user from the membership source.
func (h *Hub) Invalidate(ctx context.Context, userID chat.UserID) error {
	return h.registry.Invalidate(ctx, userID)
}

func (h *Hub) SessionCount() int {
	return h.index.SessionCount()
}
