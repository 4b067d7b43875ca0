package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PoluyanbIch/GoQuizBot/internal/chatui"
	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

// Engine is the part of session.Engine the transport needs.
type Engine interface {
	Process(ctx context.Context, ev session.Event) []session.Reply
}

const queueDepth = 8

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	sender  sender
	engine  Engine
	log     logrus.FieldLogger
	workers int
}

func NewBot(token string, engine Engine, logger logrus.FieldLogger, workers int, debug bool) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = debug

	if workers <= 0 {
		workers = 1
	}
	return &Bot{
		api:     api,
		sender:  api,
		engine:  engine,
		log:     logger.WithField("transport", "telegram"),
		workers: workers,
	}, nil
}

// Start long-polls updates until ctx is done. Messages are handled by at
// most workers goroutines; one chat's messages stay in order.
func (b *Bot) Start(ctx context.Context) error {
	b.log.Infof("Authorised on account: %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	dispatch := chatui.NewDispatcher(b.workers, queueDepth)
	defer dispatch.Close()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.Chat == nil {
				continue
			}
			if !dispatch.Submit(ctx, msg.Chat.ID, func() { b.handleMessage(ctx, msg) }) {
				b.api.StopReceivingUpdates()
				return nil
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Text == "" {
		return
	}
	chatID := msg.Chat.ID

	var (
		kind session.EventKind
		ok   bool
	)
	if msg.IsCommand() {
		kind, ok = chatui.CommandKind(msg.Command())
	} else {
		kind, ok = chatui.Classify(msg.Text, false)
	}
	if !ok {
		b.sendMessage(chatID, session.Reply{Text: chatui.MsgUnknownCommand})
		return
	}

	ev := session.Event{
		ID:     uuid.NewString(),
		UserID: strconv.FormatInt(chatID, 10),
		Kind:   kind,
		Text:   msg.Text,
	}
	for _, reply := range b.engine.Process(ctx, ev) {
		b.sendMessage(chatID, reply)
	}
}

// sendMessage is fire-and-forget: the session write already happened.
func (b *Bot) sendMessage(chatID int64, reply session.Reply) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if markup := replyMarkup(reply.Keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.sender.Send(msg); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("Error sending msg")
	}
}

func replyMarkup(k session.Keyboard) interface{} {
	switch k {
	case session.KeyboardUnchanged:
		return nil
	case session.KeyboardNone:
		return tgbotapi.NewRemoveKeyboard(true)
	}

	var rows [][]tgbotapi.KeyboardButton
	for _, labels := range chatui.Rows(k) {
		var row []tgbotapi.KeyboardButton
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
