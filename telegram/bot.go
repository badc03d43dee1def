package telegram

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"emobility/entity"
	"emobility/internal"
	"emobility/utility"
)

// TgBot pushes session events to subscribed operators and answers status
// queries. Implements the event listener interface; every hook is
// non-blocking, messages go through buffered channels.
type TgBot struct {
	api               *tgbotapi.BotAPI
	database          internal.Database
	logger            internal.LogHandler
	heartbeatInterval time.Duration
	subMux            sync.Mutex
	subscriptions     map[int]entity.UserSubscription
	event             chan MessageContent
	send              chan MessageContent
}

type MessageContent struct {
	ChatID int64
	Text   string
}

func NewBot(apiKey string, logger internal.LogHandler) (*TgBot, error) {
	tgBot := &TgBot{
		logger:            logger,
		heartbeatInterval: 600 * time.Second,
		subscriptions:     make(map[int]entity.UserSubscription),
		event:             make(chan MessageContent, 100),
		send:              make(chan MessageContent, 100),
	}
	api, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, err
	}
	tgBot.api = api
	return tgBot, nil
}

func (b *TgBot) SetDatabase(database internal.Database) {
	b.database = database
}

// SetHeartbeatInterval sets the interval stations were told to report with,
// used to decide which stations count as offline in status replies.
func (b *TgBot) SetHeartbeatInterval(interval time.Duration) {
	b.heartbeatInterval = interval
}

func (b *TgBot) Start() {
	if b.database != nil {
		subscriptions, err := b.database.GetSubscriptions()
		if err != nil {
			b.logger.Error("bot: getting subscriptions", err)
		} else {
			for _, subscription := range subscriptions {
				b.subscribe(subscription)
			}
		}
	}
	go b.sendPump()
	go b.eventPump()
	go b.updatesPump()
}

// subscriptions is shared between updatesPump and eventPump,
// so every access goes through these.
func (b *TgBot) subscribe(subscription entity.UserSubscription) {
	b.subMux.Lock()
	defer b.subMux.Unlock()
	b.subscriptions[subscription.UserID] = subscription
}

func (b *TgBot) unsubscribe(userId int) {
	b.subMux.Lock()
	defer b.subMux.Unlock()
	delete(b.subscriptions, userId)
}

func (b *TgBot) subscriptionOf(userId int) (entity.UserSubscription, bool) {
	b.subMux.Lock()
	defer b.subMux.Unlock()
	subscription, ok := b.subscriptions[userId]
	return subscription, ok
}

func (b *TgBot) subscribers() []entity.UserSubscription {
	b.subMux.Lock()
	defer b.subMux.Unlock()
	list := make([]entity.UserSubscription, 0, len(b.subscriptions))
	for _, subscription := range b.subscriptions {
		list = append(list, subscription)
	}
	return list
}

func (b *TgBot) updatesPump() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		b.logger.Error("bot: getting updates", err)
		return
	}
	for update := range updates {
		if update.Message == nil {
			continue
		}
		if !update.Message.IsCommand() {
			continue
		}
		switch update.Message.Command() {
		case "start":
			subscription := entity.UserSubscription{
				UserID:           update.Message.From.ID,
				User:             update.Message.From.UserName,
				TenantId:         strings.TrimSpace(update.Message.CommandArguments()),
				SubscriptionType: "status",
			}
			b.subscribe(subscription)
			msg := fmt.Sprintf("Hello *%v*, you are now subscribed to updates", update.Message.From.UserName)
			if b.database != nil {
				if err := b.database.AddSubscription(&subscription); err != nil {
					b.logger.Error("bot: adding subscription", err)
					msg = fmt.Sprintf("Error adding subscription:\n `%v`", sanitize(err.Error()))
				}
			}
			b.send <- MessageContent{ChatID: update.Message.Chat.ID, Text: msg}
		case "stop":
			b.unsubscribe(update.Message.From.ID)
			if b.database != nil {
				if err := b.database.DeleteSubscription(&entity.UserSubscription{UserID: update.Message.From.ID}); err != nil {
					b.logger.Error("bot: deleting subscription", err)
				}
			}
			b.send <- MessageContent{ChatID: update.Message.Chat.ID, Text: "Your subscription has been removed"}
		case "status":
			tenantId := strings.TrimSpace(update.Message.CommandArguments())
			if tenantId == "" {
				if subscription, ok := b.subscriptionOf(update.Message.From.ID); ok {
					tenantId = subscription.TenantId
				}
			}
			msg := b.composeStatusMessage(tenantId)
			b.send <- MessageContent{ChatID: update.Message.Chat.ID, Text: msg}
		}
	}
}

// eventPump sending events to all subscribers
func (b *TgBot) eventPump() {
	for event := range b.event {
		for _, subscription := range b.subscribers() {
			b.sendMessage(int64(subscription.UserID), event.Text)
		}
	}
}

// sendPump sending messages to users
func (b *TgBot) sendPump() {
	for event := range b.send {
		b.sendMessage(event.ChatID, event.Text)
	}
}

func (b *TgBot) sendMessage(id int64, text string) {
	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = "MarkdownV2"
	_, err := b.api.Send(msg)
	if err != nil {
		// the markup may be what failed; report the error in plain text
		msg = tgbotapi.NewMessage(id, fmt.Sprintf("Error: %v", err))
		if _, err = b.api.Send(msg); err != nil {
			b.logger.Error("bot: sending message", err)
		}
	}
}

func (b *TgBot) OnStationRegistered(event *internal.EventMessage) {
	msg := fmt.Sprintf("*%v*: registered `%v`\n", event.ChargeBoxId, event.Status)
	if event.Info != "" {
		msg += fmt.Sprintf("%v\n", sanitize(event.Info))
	}
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnStatusNotification(event *internal.EventMessage) {
	if event.ConnectorId == 0 {
		// status updates of the charger itself are noise for operators
		return
	}
	msg := fmt.Sprintf("*%v*: Connector %v: `%v`\n", event.ChargeBoxId, event.ConnectorId, event.Status)
	if event.TransactionId > 0 {
		msg += fmt.Sprintf("Transaction ID: %v\n", event.TransactionId)
	}
	if event.Info != "" {
		msg += fmt.Sprintf("%v\n", sanitize(event.Info))
	}
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnTransactionStart(event *internal.EventMessage) {
	msg := fmt.Sprintf("*%v*: Connector %v: `%v`\n", event.ChargeBoxId, event.ConnectorId, event.Status)
	msg += fmt.Sprintf("Transaction ID: %v START\n", event.TransactionId)
	msg += fmt.Sprintf("User: %v\n", sanitize(event.Username))
	msg += fmt.Sprintf("ID Tag: %v\n", sanitize(event.IdTag))
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnTransactionStop(event *internal.EventMessage) {
	msg := fmt.Sprintf("*%v*: Connector %v: `%v`\n", event.ChargeBoxId, event.ConnectorId, event.Status)
	msg += fmt.Sprintf("Transaction ID: %v STOP\n", event.TransactionId)
	msg += fmt.Sprintf("User: %v\n", sanitize(event.Username))
	msg += fmt.Sprintf("ID Tag: %v\n", sanitize(event.IdTag))
	msg += fmt.Sprintf("Info: %v\n", sanitize(event.Info))
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnAuthorize(event *internal.EventMessage) {
	msg := fmt.Sprintf("*%v*: user: `%v`\n", event.ChargeBoxId, sanitize(event.IdTag))
	msg += fmt.Sprintf("Auth status: %v\n", event.Status)
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) composeStatusMessage(tenantId string) string {
	msg := "Status info:\n\n"
	if b.database != nil && tenantId != "" {
		stations, err := b.database.GetChargingStations(tenantId)
		if err != nil {
			b.logger.Error("bot: getting stations", err)
			msg += fmt.Sprintf("Error getting stations:\n `%v`", sanitize(err.Error()))
		} else {
			nowTime := time.Now()
			for i := range stations {
				st := &stations[i]
				liveness := "online"
				if st.IsOffline(b.heartbeatInterval, nowTime) {
					liveness = "offline"
				}
				msg += fmt.Sprintf("*%v*: `%v`, seen %v\n", st.Id, liveness, sanitize(utility.TimeAgo(st.LastHeartbeat)))
				for _, connector := range st.Connectors {
					msg += fmt.Sprintf("Connector %v: `%v`", connector.Id, connector.Status)
					if connector.HasActiveTransaction() {
						msg += fmt.Sprintf(" %v kW", sanitize(utility.WattsAsKw(int(connector.CurrentConsumptionW))))
					}
					msg += "\n"
				}
				msg += "\n"
			}
		}
	}
	msg += fmt.Sprintf("Active subscriptions: %v", len(b.subscribers()))
	return msg
}

func sanitize(input string) string {
	reservedChars := "\\`*_{}[]()#+-.!|"
	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\" + string(char)
		} else {
			sanitized += string(char)
		}
	}
	return sanitized
}
