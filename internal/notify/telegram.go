package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"tempatku/internal/domain"
	"tempatku/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the slice of the bot API the notifier uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes booking and place lifecycle updates to owners over
// Telegram. Owners without a linked chat are silently skipped.
type Notifier struct {
	bot    TelegramSender
	store  domain.Store
	logger *zerolog.Logger
}

func NewNotifier(bot TelegramSender, store domain.Store, logger *zerolog.Logger) *Notifier {
	return &Notifier{bot: bot, store: store, logger: logger}
}

// Register subscribes the notifier to the event bus.
func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.onBookingEvent)
	bus.Subscribe(events.EventBookingApproved, n.onBookingEvent)
	bus.Subscribe(events.EventBookingRejected, n.onBookingEvent)
	bus.Subscribe(events.EventPlaceApproved, n.onPlaceEvent)
	bus.Subscribe(events.EventPlaceRejected, n.onPlaceEvent)
}

func (n *Notifier) onBookingEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	var text string
	switch event.Type {
	case events.EventBookingCreated:
		text = fmt.Sprintf(
			"Booking baru #%s\n%s, %d orang\n%s %s\nMenunggu konfirmasi.",
			payload.BookingID, payload.CustomerName, payload.PartySize, payload.Date, payload.Time,
		)
	case events.EventBookingApproved:
		text = fmt.Sprintf("Booking #%s disetujui.", payload.BookingID)
	case events.EventBookingRejected:
		text = fmt.Sprintf("Booking #%s ditolak.", payload.BookingID)
	default:
		return nil
	}

	return n.sendToUser(payload.OwnerID, text)
}

func (n *Notifier) onPlaceEvent(event *events.Event) error {
	var payload events.PlaceEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	var text string
	switch event.Type {
	case events.EventPlaceApproved:
		text = fmt.Sprintf("Tempat \"%s\" sudah disetujui dan tampil di katalog.", payload.Name)
	case events.EventPlaceRejected:
		text = fmt.Sprintf("Tempat \"%s\" ditolak oleh admin.", payload.Name)
	default:
		return nil
	}

	return n.sendToUser(payload.OwnerID, text)
}

func (n *Notifier) sendToUser(userID, text string) error {
	if n.bot == nil || userID == "" {
		return nil
	}

	user, err := n.store.GetUser(context.Background(), userID)
	if err != nil {
		n.logger.Warn().Err(err).Str("user_id", userID).Msg("notify: owner lookup failed")
		return nil
	}
	if user.TelegramChatID == 0 {
		return nil
	}

	if _, err := n.bot.Send(tgbotapi.NewMessage(user.TelegramChatID, text)); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", user.TelegramChatID).Msg("notify: telegram send failed")
		return err
	}
	return nil
}
