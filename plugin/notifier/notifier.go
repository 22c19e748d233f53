// Package notifier fans match notifications out to delivery channels:
// in-app notifications, email, and webhooks.
package notifier

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SurinderTech/findify-finder/server/service/matching"
	"github.com/SurinderTech/findify-finder/server/stats"
	"github.com/SurinderTech/findify-finder/store"
)

// Message is one notification addressed to one user, ready for any channel.
type Message struct {
	UserID        int32
	Email         string
	Title         string
	Body          string
	RelatedItemID *int32
}

// ChannelSender delivers a message over one channel.
type ChannelSender interface {
	Send(ctx context.Context, message *Message) error
	Name() string
}

// UserStore resolves notification recipients.
type UserStore interface {
	GetUser(ctx context.Context, find *store.FindUser) (*store.User, error)
}

// Dispatcher resolves recipients and fans messages out to every registered
// channel. It implements the matching pipeline's Notifier contract:
// delivery is fire-and-forget, failures are logged and counted but never
// propagate to the caller.
type Dispatcher struct {
	users   UserStore
	stats   *stats.Counters
	logger  *slog.Logger
	mu      sync.RWMutex
	senders []ChannelSender
}

// NewDispatcher creates a dispatcher with no channels registered.
func NewDispatcher(users UserStore, counters *stats.Counters) *Dispatcher {
	if counters == nil {
		counters = stats.New()
	}
	return &Dispatcher{
		users:  users,
		stats:  counters,
		logger: slog.Default(),
	}
}

// Register adds a channel sender.
func (d *Dispatcher) Register(sender ChannelSender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, sender)
	d.logger.Info("registered notification channel", "sender", sender.Name())
}

var _ matching.Notifier = (*Dispatcher)(nil)

// NotifyMatch notifies the submitter once with an aggregate message and
// each candidate's owner once per match.
func (d *Dispatcher) NotifyMatch(ctx context.Context, item *store.Item, scored []matching.ScoredCandidate) {
	if len(scored) == 0 {
		return
	}

	messages := make([]*Message, 0, len(scored)+1)

	submitterTitle, submitterBody := submitterMatchMessage(item, len(scored))
	messages = append(messages, &Message{
		UserID:        item.OwnerID,
		Title:         submitterTitle,
		Body:          submitterBody,
		RelatedItemID: &item.ID,
	})

	for _, sc := range scored {
		title, body := ownerMatchMessage(sc.Item, item)
		messages = append(messages, &Message{
			UserID:        sc.Item.OwnerID,
			Title:         title,
			Body:          body,
			RelatedItemID: &sc.Item.ID,
		})
	}

	d.dispatch(ctx, messages)
}

// NotifyConfirmation notifies both owners that the match was confirmed.
func (d *Dispatcher) NotifyConfirmation(ctx context.Context, match *store.Match, lostItem, foundItem *store.Item) {
	lostTitle, lostBody := confirmationMessageForLoser(lostItem, foundItem)
	foundTitle, foundBody := confirmationMessageForFinder(foundItem, lostItem)
	d.dispatch(ctx, []*Message{
		{
			UserID:        lostItem.OwnerID,
			Title:         lostTitle,
			Body:          lostBody,
			RelatedItemID: &lostItem.ID,
		},
		{
			UserID:        foundItem.OwnerID,
			Title:         foundTitle,
			Body:          foundBody,
			RelatedItemID: &foundItem.ID,
		},
	})
}

// dispatch resolves each recipient and sends the message through every
// registered channel concurrently.
func (d *Dispatcher) dispatch(ctx context.Context, messages []*Message) {
	d.mu.RLock()
	senders := make([]ChannelSender, len(d.senders))
	copy(senders, d.senders)
	d.mu.RUnlock()
	if len(senders) == 0 {
		return
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, message := range messages {
		if d.users != nil {
			user, err := d.users.GetUser(ctx, &store.FindUser{ID: &message.UserID})
			if err != nil || user == nil {
				d.logger.Warn("failed to resolve notification recipient",
					"user_id", message.UserID, "error", err)
			} else {
				message.Email = user.Email
			}
		}

		for _, sender := range senders {
			message, sender := message, sender
			eg.Go(func() error {
				if err := sender.Send(ctx, message); err != nil {
					d.stats.Inc(stats.OutcomeNotifyFailed)
					d.logger.Error("notification delivery failed",
						"sender", sender.Name(),
						"user_id", message.UserID,
						"error", err)
				}
				return nil
			})
		}
	}
	// Goroutines swallow their own errors; Wait only joins them.
	_ = eg.Wait()
}
