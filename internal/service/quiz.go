package service

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

var ErrEmptyBank = errors.New("question bank is empty")

// QuizQuestion - пара вопрос/ответ, ответ уже нормализован
type QuizQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Digest возвращает хеш текста вопроса
func (q QuizQuestion) Digest() string {
	return QuestionDigest(q.Question)
}

// QuestionDigest - xxhash64 текста вопроса в hex фиксированной длины.
// Не меняется между рестартами, поэтому хранится в записи сессии.
func QuestionDigest(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// Bank - неизменяемый набор вопросов, загружается при старте
type Bank struct {
	questions []QuizQuestion
	intn      func(n int) int
}

func NewBank(questions []QuizQuestion) (*Bank, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}

	owned := make([]QuizQuestion, len(questions))
	copy(owned, questions)

	return &Bank{
		questions: owned,
		intn:      rand.IntN,
	}, nil
}

// PickRandom возвращает случайный вопрос
func (b *Bank) PickRandom() QuizQuestion {
	return b.questions[b.intn(len(b.questions))]
}

// All возвращает копию всех вопросов в порядке загрузки
func (b *Bank) All() []QuizQuestion {
	out := make([]QuizQuestion, len(b.questions))
	copy(out, b.questions)
	return out
}

func (b *Bank) Len() int {
	return len(b.questions)
}
