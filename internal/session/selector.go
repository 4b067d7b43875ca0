package session

import "github.com/PoluyanbIch/GoQuizBot/internal/service"

// QuestionSource is the read-only question pool.
type QuestionSource interface {
	PickRandom() service.QuizQuestion
	All() []service.QuizQuestion
}

// Selector picks the next question for a record and may update its seen-set.
type Selector interface {
	Select(src QuestionSource, record *Record) service.QuizQuestion
}

// UniformSelector draws uniformly with repetition and ignores the seen-set.
type UniformSelector struct{}

func (UniformSelector) Select(src QuestionSource, _ *Record) service.QuizQuestion {
	return src.PickRandom()
}

const defaultMaxDraws = 32

// SeenSetSelector avoids questions already delivered to the user. Random
// draws are rejected while their digest is in the seen-set; after MaxDraws
// rejections the pool is scanned in shuffled order, and once every question
// has been seen a uniform draw with repetition is returned.
type SeenSetSelector struct {
	MaxDraws int
	shuffle  func([]service.QuizQuestion) []service.QuizQuestion
}

func (s SeenSetSelector) Select(src QuestionSource, record *Record) service.QuizQuestion {
	maxDraws := s.MaxDraws
	if maxDraws <= 0 {
		maxDraws = defaultMaxDraws
	}

	for range maxDraws {
		q := src.PickRandom()
		if digest := q.Digest(); !record.HasSeen(digest) {
			record.MarkSeen(digest)
			return q
		}
	}

	shuffle := s.shuffle
	if shuffle == nil {
		shuffle = service.ShuffleQuestions
	}
	for _, q := range shuffle(src.All()) {
		if digest := q.Digest(); !record.HasSeen(digest) {
			record.MarkSeen(digest)
			return q
		}
	}

	// pool exhausted
	return src.PickRandom()
}
