// Package vk runs the quiz in VK community messages over the bots long poll.
package vk

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/api/params"
	"github.com/SevereCloud/vksdk/v2/events"
	longpoll "github.com/SevereCloud/vksdk/v2/longpoll-bot"
	"github.com/SevereCloud/vksdk/v2/object"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PoluyanbIch/GoQuizBot/internal/chatui"
	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

const (
	buttonColor = "secondary"
	queueDepth  = 8
)

type Engine interface {
	Process(ctx context.Context, ev session.Event) []session.Reply
}

type messageSender interface {
	MessagesSend(b api.Params) (int, error)
}

type Bot struct {
	lp       *longpoll.LongPoll
	sender   messageSender
	engine   Engine
	log      logrus.FieldLogger
	dispatch *chatui.Dispatcher
	randInt  func() int
}

func NewBot(token string, groupID int, engine Engine, logger logrus.FieldLogger, workers int) (*Bot, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("vk group id is required")
	}
	vk := api.NewVK(token)
	lp, err := longpoll.NewLongPoll(vk, groupID)
	if err != nil {
		return nil, fmt.Errorf("vk long poll: %w", err)
	}

	b := newBot(vk, engine, logger, workers)
	b.lp = lp
	lp.MessageNew(b.onMessageNew)
	return b, nil
}

func newBot(sender messageSender, engine Engine, logger logrus.FieldLogger, workers int) *Bot {
	return &Bot{
		sender:   sender,
		engine:   engine,
		log:      logger.WithField("transport", "vk"),
		dispatch: chatui.NewDispatcher(workers, queueDepth),
		randInt:  func() int { return int(rand.Int32()) },
	}
}

// Start polls until ctx is done and waits for queued messages.
func (b *Bot) Start(ctx context.Context) error {
	b.log.Info("VK long poll started")
	err := b.lp.RunWithContext(ctx)
	b.dispatch.Close()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("vk long poll: %w", err)
	}
	return nil
}

func (b *Bot) onMessageNew(ctx context.Context, obj events.MessageNewObject) {
	msg := obj.Message
	// community chats are not supported
	if msg.PeerID != msg.FromID {
		return
	}

	b.dispatch.Submit(ctx, int64(msg.PeerID), func() {
		b.handleMessage(ctx, msg.PeerID, msg.Text)
	})
}

func (b *Bot) handleMessage(ctx context.Context, peerID int, text string) {
	if text == "" {
		return
	}

	kind, ok := chatui.Classify(text, true)
	if !ok {
		b.send(peerID, session.Reply{Text: chatui.MsgUnknownCommand})
		return
	}

	ev := session.Event{
		ID:     uuid.NewString(),
		UserID: strconv.Itoa(peerID),
		Kind:   kind,
		Text:   text,
	}
	for _, reply := range b.engine.Process(ctx, ev) {
		b.send(peerID, reply)
	}
}

func (b *Bot) send(peerID int, reply session.Reply) {
	msg := params.NewMessagesSendBuilder()
	msg.PeerID(peerID)
	msg.Message(reply.Text)
	msg.RandomID(b.randInt())
	if kb := keyboard(reply.Keyboard); kb != nil {
		msg.Keyboard(kb)
	}

	if _, err := b.sender.MessagesSend(msg.Params); err != nil {
		b.log.WithField("peer_id", peerID).WithError(err).Error("Error sending msg")
	}
}

// keyboard returns nil when the current keyboard should be left alone; an
// empty keyboard hides it.
func keyboard(k session.Keyboard) *object.MessagesKeyboard {
	if k == session.KeyboardUnchanged {
		return nil
	}
	kb := object.NewMessagesKeyboard(true)
	for _, labels := range chatui.Rows(k) {
		kb.AddRow()
		for _, label := range labels {
			kb.AddTextButton(label, "", buttonColor)
		}
	}
	return kb
}
