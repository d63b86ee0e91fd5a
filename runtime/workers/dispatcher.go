package workers

import (
	"chirp-hub/contract"
	"chirp-hub/domain/chat"
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"chirp-hub/observability"
	"chirp-hub/protocol"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EventDispatcher is the single consumer of the domain event queue.
//
// Events are processed one at a time so subscribers of a chat see them in
// queue order. Within one event, delivery to each target runs in parallel
// with its own timeout, and a failing target never affects the others.
// Nothing is retried: clients resync through the REST API.
type EventDispatcher struct {
	log             *slog.Logger
	routes          contract.IRoutingTable
	sessions        contract.ISessionRegistry
	events          <-chan event.DomainEvent
	metrics         *observability.Metrics
	deliveryTimeout time.Duration
}

func NewEventDispatcher(log *slog.Logger, routes contract.IRoutingTable, sessions contract.ISessionRegistry,
	events <-chan event.DomainEvent, metrics *observability.Metrics, deliveryTimeout time.Duration) *EventDispatcher {
	return &EventDispatcher{
		log:             log,
		routes:          routes,
		sessions:        sessions,
		events:          events,
		metrics:         metrics,
		deliveryTimeout: deliveryTimeout,
	}
}

func (w *EventDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event queue closed, stopping dispatcher")
				return nil
			}
			w.Dispatch(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping dispatcher")
			return nil
		}
	}
}

// Dispatch applies the event to the routing table, then delivers the frame
// to every target. It returns one result per target.
func (w *EventDispatcher) Dispatch(ctx context.Context, e event.DomainEvent) []contract.DeliveryResult {
	start := time.Now()
	defer func() { w.metrics.DispatchDuration.Observe(time.Since(start).Seconds()) }()
	w.metrics.EventsDispatched.WithLabelValues(string(e.Type())).Inc()

	plan := &fanoutPlan{routes: w.routes}
	e.Accept(plan)
	if len(plan.targets) == 0 {
		w.log.Debug("No live target", "event", e.Type())
		return nil
	}

	frame, err := protocol.Encode(plan.frameType, plan.payload)
	if err != nil {
		w.log.Error("Unable to serialize event, nothing delivered", "event", e.Type(), "error", err)
		return nil
	}
	return w.deliver(ctx, e.Type(), frame, plan.targets)
}

func (w *EventDispatcher) deliver(ctx context.Context, eventType event.Type, frame []byte,
	targets []chat.Session) []contract.DeliveryResult {
	results := make([]contract.DeliveryResult, len(targets))
	var wg sync.WaitGroup
	for i, s := range targets {
		wg.Add(1)
		go func(i int, s chat.Session) {
			defer wg.Done()
			results[i] = contract.DeliveryResult{SessionID: s.ID, UserID: s.UserID, Err: w.send(ctx, s, frame)}
		}(i, s)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err == nil {
			w.metrics.Deliveries.WithLabelValues(string(eventType), observability.DeliveryOK).Inc()
			continue
		}
		w.metrics.Deliveries.WithLabelValues(string(eventType), observability.DeliveryFailed).Inc()
		w.log.Warn("Delivery failed", "event", eventType, "session_id", r.SessionID,
			"user_id", r.UserID, "error", r.Err)
		if errors.Is(r.Err, errors.ErrTransportClosed) {
			w.sessions.Disconnect(r.SessionID)
		}
	}
	return results
}

func (w *EventDispatcher) send(ctx context.Context, s chat.Session, frame []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	sendCtx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
	defer cancel()
	return s.Transport.Send(sendCtx, frame)
}

// fanoutPlan resolves the targets and outbound payload of one event.
// Membership events mutate the routing table and read the targets in one step.
type fanoutPlan struct {
	routes    contract.IRoutingTable
	targets   []chat.Session
	frameType protocol.MessageType
	payload   any
}

func (p *fanoutPlan) VisitNewMessage(e event.NewMessage) {
	p.targets = p.routes.ChatSessions(e.Message.ChatID)
	p.frameType = protocol.TypeNewMessage
	p.payload = protocol.NewChatMessageDto(e.Message)
}

func (p *fanoutPlan) VisitMessageDeleted(e event.MessageDeleted) {
	p.targets = p.routes.ChatSessions(e.ChatID)
	p.frameType = protocol.TypeMessageDeleted
	p.payload = protocol.DeleteMessageDto{ChatID: e.ChatID.String(), MessageID: e.MessageID.String()}
}

func (p *fanoutPlan) VisitParticipantsJoined(e event.ParticipantsJoined) {
	p.targets = p.routes.AddMembers(e.ChatID, e.UserIDs)
	p.frameType = protocol.TypeChatParticipantsChanged
	p.payload = protocol.NewParticipantsChangedDto(e.ChatID, e.UserIDs)
}

func (p *fanoutPlan) VisitParticipantLeft(e event.ParticipantLeft) {
	p.targets = p.routes.RemoveMember(e.ChatID, e.UserID)
	p.frameType = protocol.TypeChatParticipantsChanged
	p.payload = protocol.NewParticipantsChangedDto(e.ChatID, []chat.UserID{e.UserID})
}

func (p *fanoutPlan) VisitChatCreated(e event.ChatCreated) {
	p.targets = p.routes.AddMembers(e.ChatID, e.ParticipantIDs)
	p.frameType = protocol.TypeChatParticipantsChanged
	p.payload = protocol.NewParticipantsChangedDto(e.ChatID, e.ParticipantIDs)
}

func (p *fanoutPlan) VisitProfilePictureUpdated(e event.ProfilePictureUpdated) {
	p.targets = p.routes.UserChatSessions(e.UserID)
	p.frameType = protocol.TypeProfilePictureUpdated
	p.payload = protocol.ProfilePictureUpdateDto{UserID: e.UserID.String(), NewURL: e.NewURL}
}
