package service

import "math/rand/v2"

// ShuffleQuestions перемешивает вопросы в случайном порядке, оригинал не меняется
func ShuffleQuestions(questions []QuizQuestion) []QuizQuestion {
	shuffled := make([]QuizQuestion, len(questions))
	copy(shuffled, questions)

	// Перемешиваем вопросы используя алгоритм Фишера-Йейтса
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}
