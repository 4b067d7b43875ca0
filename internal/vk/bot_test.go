package vk

import (
	"context"
	"errors"
	"testing"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/events"
	"github.com/SevereCloud/vksdk/v2/object"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

type recordingSender struct {
	sent []api.Params
	err  error
}

func (s *recordingSender) MessagesSend(b api.Params) (int, error) {
	s.sent = append(s.sent, b)
	return len(s.sent), s.err
}

type stubEngine struct {
	events  []session.Event
	replies []session.Reply
}

func (e *stubEngine) Process(_ context.Context, ev session.Event) []session.Reply {
	e.events = append(e.events, ev)
	return e.replies
}

func newTestBot(engine Engine) (*Bot, *recordingSender, *test.Hook) {
	logger, hook := test.NewNullLogger()
	s := &recordingSender{}
	b := newBot(s, engine, logger, 1)
	b.randInt = func() int { return 7 }
	return b, s, hook
}

func TestHandleBareStart(t *testing.T) {
	engine := &stubEngine{replies: []session.Reply{{Text: "hi", Keyboard: session.KeyboardNewQuestion}}}
	bot, sender, _ := newTestBot(engine)

	bot.handleMessage(context.Background(), 100, "start")

	require.Len(t, engine.events, 1)
	assert.Equal(t, session.EventStart, engine.events[0].Kind)
	assert.Equal(t, "100", engine.events[0].UserID)
	assert.NotEmpty(t, engine.events[0].ID)

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, 100, sent["peer_id"])
	assert.Equal(t, "hi", sent["message"])
	assert.Equal(t, 7, sent["random_id"])

	kb, ok := sent["keyboard"].(*object.MessagesKeyboard)
	require.True(t, ok)
	require.Len(t, kb.Buttons, 1)
	assert.Equal(t, session.ButtonNewQuestion, kb.Buttons[0][0].Action.Label)
	assert.Equal(t, session.ButtonScore, kb.Buttons[0][1].Action.Label)
}

func TestHandleAnswerAndUnknownCommand(t *testing.T) {
	engine := &stubEngine{}
	bot, sender, _ := newTestBot(engine)

	bot.handleMessage(context.Background(), 5, "Гагарин")
	bot.handleMessage(context.Background(), 5, "/what")
	bot.handleMessage(context.Background(), 5, "")

	require.Len(t, engine.events, 1)
	assert.Equal(t, session.EventAnswer, engine.events[0].Kind)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Неизвестная команда", sender.sent[0]["message"])
	_, hasKeyboard := sender.sent[0]["keyboard"]
	assert.False(t, hasKeyboard)
}

func TestOnMessageNewIgnoresChats(t *testing.T) {
	engine := &stubEngine{}
	bot, _, _ := newTestBot(engine)

	var chat events.MessageNewObject
	chat.Message.PeerID = 2000000001
	chat.Message.FromID = 5
	chat.Message.Text = "start"
	bot.onMessageNew(context.Background(), chat)

	direct := chat
	direct.Message.PeerID = 5
	bot.onMessageNew(context.Background(), direct)
	bot.dispatch.Close()

	require.Len(t, engine.events, 1)
	assert.Equal(t, "5", engine.events[0].UserID)
}

func TestOnMessageNewKeepsOrderPerUser(t *testing.T) {
	engine := &stubEngine{}
	logger, _ := test.NewNullLogger()
	bot := newBot(&recordingSender{}, engine, logger, 4)

	texts := []string{"start", session.ButtonNewQuestion, "первый", "второй", session.ButtonSurrender}
	for _, text := range texts {
		var obj events.MessageNewObject
		obj.Message.PeerID = 77
		obj.Message.FromID = 77
		obj.Message.Text = text
		bot.onMessageNew(context.Background(), obj)
	}
	bot.dispatch.Close()

	require.Len(t, engine.events, len(texts))
	for i, ev := range engine.events {
		assert.Equal(t, texts[i], ev.Text)
	}
}

func TestSendErrorIsLogged(t *testing.T) {
	engine := &stubEngine{replies: []session.Reply{{Text: "x"}}}
	bot, sender, hook := newTestBot(engine)
	sender.err = errors.New("flood control")

	bot.handleMessage(context.Background(), 9, "ответ")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 9, hook.LastEntry().Data["peer_id"])
}

func TestKeyboard(t *testing.T) {
	assert.Nil(t, keyboard(session.KeyboardUnchanged))

	none := keyboard(session.KeyboardNone)
	require.NotNil(t, none)
	assert.Empty(t, none.Buttons)

	answer := keyboard(session.KeyboardAnswer)
	require.Len(t, answer.Buttons, 1)
	assert.Equal(t, session.ButtonSurrender, answer.Buttons[0][1].Action.Label)
	assert.Equal(t, "secondary", answer.Buttons[0][1].Color)
}
