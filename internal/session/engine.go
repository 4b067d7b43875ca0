package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PoluyanbIch/GoQuizBot/internal/service"
)

var ErrMissingUser = errors.New("event has no user id")

type Config struct {
	Store     Store
	Questions QuestionSource
	// Leaderboard is optional; correct answers are mirrored into it.
	Leaderboard service.LeaderboardService
	// Selector defaults to SeenSetSelector.
	Selector Selector
	Logger   logrus.FieldLogger
}

// Engine drives the per-user quiz conversation. Every event is one
// read-modify-write of the user's record under that user's lock.
type Engine struct {
	store       Store
	questions   QuestionSource
	leaderboard service.LeaderboardService
	selector    Selector
	log         logrus.FieldLogger
	locks       *keyedMutex
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Questions == nil {
		return nil, errors.New("question source is required")
	}

	selector := cfg.Selector
	if selector == nil {
		selector = SeenSetSelector{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Engine{
		store:       cfg.Store,
		questions:   cfg.Questions,
		leaderboard: cfg.Leaderboard,
		selector:    selector,
		log:         logger,
		locks:       newKeyedMutex(),
	}, nil
}

// Process handles ev and never fails: errors are logged and replaced by a
// generic apology so no internal detail reaches the chat.
func (e *Engine) Process(ctx context.Context, ev Event) []Reply {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	replies, err := e.Handle(ctx, ev)
	if err != nil {
		e.eventLog(ev).WithError(err).Error("event dropped")
		return []Reply{{UserID: ev.UserID, Text: msgApology, Keyboard: KeyboardUnchanged}}
	}
	return replies
}

// Handle runs one transition. On error nothing has been written and the
// returned replies are nil.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Reply, error) {
	if strings.TrimSpace(ev.UserID) == "" {
		return nil, ErrMissingUser
	}

	replies, scored, err := e.transition(ctx, ev)
	if err != nil {
		return nil, err
	}
	// the user lock is already released here
	if scored != nil {
		e.recordScore(ctx, ev, *scored)
	}
	return replies, nil
}

// transition holds the user's lock from the read until the write. scored is
// set when a correct answer changed the score.
func (e *Engine) transition(ctx context.Context, ev Event) (replies []Reply, scored *int, err error) {
	unlock, err := e.locks.Lock(ctx, ev.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("wait for user lock: %w", err)
	}
	defer unlock()

	e.eventLog(ev).Debug("handling event")

	switch ev.Kind {
	case EventStart:
		replies, err = e.start(ctx, ev)
	case EventCancel:
		replies, err = e.cancel(ctx, ev)
	case EventNewQuestion:
		replies, err = e.newQuestion(ctx, ev)
	case EventSurrender:
		replies, err = e.surrender(ctx, ev)
	case EventScore:
		replies, err = e.score(ctx, ev)
	case EventTop:
		replies, err = e.top(ctx, ev)
	default:
		return e.answer(ctx, ev)
	}
	return replies, nil, err
}

func (e *Engine) start(ctx context.Context, ev Event) ([]Reply, error) {
	rec, found, err := e.load(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if found && rec.Task != nil {
		return nil, nil
	}
	if !found {
		if err := e.save(ctx, ev.UserID, rec); err != nil {
			return nil, err
		}
	}
	return []Reply{reply(ev, msgGreeting, KeyboardNewQuestion)}, nil
}

func (e *Engine) cancel(ctx context.Context, ev Event) ([]Reply, error) {
	rec, _, err := e.load(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if rec.Task != nil {
		rec.Task = nil
		if err := e.save(ctx, ev.UserID, rec); err != nil {
			return nil, err
		}
	}
	return []Reply{reply(ev, msgFarewell, KeyboardNone)}, nil
}

func (e *Engine) newQuestion(ctx context.Context, ev Event) ([]Reply, error) {
	rec, _, err := e.load(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	// an in-flight task is never overwritten
	if rec.Task != nil {
		return nil, nil
	}

	task := e.assignTask(&rec)
	if err := e.save(ctx, ev.UserID, rec); err != nil {
		return nil, err
	}
	return []Reply{reply(ev, questionText(task.Question), KeyboardAnswer)}, nil
}

func (e *Engine) surrender(ctx context.Context, ev Event) ([]Reply, error) {
	rec, _, err := e.load(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if rec.Task == nil {
		return nil, nil
	}

	answer := rec.Task.Answer
	rec.Task = nil
	next := e.assignTask(&rec)
	if err := e.save(ctx, ev.UserID, rec); err != nil {
		return nil, err
	}

	return []Reply{
		reply(ev, revealText(answer), KeyboardNewQuestion),
		reply(ev, questionText(next.Question), KeyboardAnswer),
	}, nil
}

func (e *Engine) score(ctx context.Context, ev Event) ([]Reply, error) {
	rec, _, err := e.load(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	return []Reply{reply(ev, scoreText(rec.Score), rec.Phase().Keyboard())}, nil
}

func (e *Engine) top(ctx context.Context, ev Event) ([]Reply, error) {
	rec, _, err := e.load(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if e.leaderboard == nil {
		return []Reply{reply(ev, msgTopEmpty, rec.Phase().Keyboard())}, nil
	}

	entries, err := e.leaderboard.Top(ctx, topLimit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	position, err := e.leaderboard.Position(ctx, ev.UserID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard position: %w", err)
	}
	return []Reply{reply(ev, topText(entries, position), rec.Phase().Keyboard())}, nil
}

func (e *Engine) answer(ctx context.Context, ev Event) ([]Reply, *int, error) {
	rec, _, err := e.load(ctx, ev.UserID)
	if err != nil {
		return nil, nil, err
	}
	if rec.Task == nil {
		return []Reply{reply(ev, msgPrompt, KeyboardNewQuestion)}, nil, nil
	}

	// stored answers are normalized at load time; inbound text is only lower-cased
	if strings.ToLower(ev.Text) == rec.Task.Answer {
		rec.Score++
		rec.Task = nil
		if err := e.save(ctx, ev.UserID, rec); err != nil {
			return nil, nil, err
		}
		return []Reply{reply(ev, msgCorrect, KeyboardNewQuestion)}, &rec.Score, nil
	}

	rec.Task.CountAnswer++
	if err := e.save(ctx, ev.UserID, rec); err != nil {
		return nil, nil, err
	}
	return []Reply{reply(ev, incorrectText(rec.Task.CountAnswer), KeyboardAnswer)}, nil, nil
}

func (e *Engine) assignTask(rec *Record) *Task {
	q := e.selector.Select(e.questions, rec)
	rec.Task = &Task{
		Question:    q.Question,
		Answer:      q.Answer,
		CountAnswer: 0,
	}
	return rec.Task
}

// load treats a missing record as a fresh one; found reports whether it existed.
func (e *Engine) load(ctx context.Context, userID string) (Record, bool, error) {
	rec, err := e.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load session: %w", err)
	}
	return rec, true, nil
}

func (e *Engine) save(ctx context.Context, userID string, rec Record) error {
	if err := e.store.Set(ctx, userID, rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// recordScore runs after the session write committed, so a leaderboard
// failure only costs a log line.
func (e *Engine) recordScore(ctx context.Context, ev Event, score int) {
	if e.leaderboard == nil {
		return
	}
	if err := e.leaderboard.Record(ctx, ev.UserID, score); err != nil {
		e.eventLog(ev).WithError(err).Warn("leaderboard update failed")
	}
}

func (e *Engine) eventLog(ev Event) logrus.FieldLogger {
	return e.log.WithFields(logrus.Fields{
		"event_id": ev.ID,
		"user_id":  ev.UserID,
		"event":    ev.Kind.String(),
	})
}

func reply(ev Event, text string, keyboard Keyboard) Reply {
	return Reply{UserID: ev.UserID, Text: text, Keyboard: keyboard}
}
