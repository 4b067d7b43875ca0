package session

import (
	"fmt"
	"strings"

	"github.com/PoluyanbIch/GoQuizBot/internal/service"
)

// Button labels. Transports render them and classify them back into events.
const (
	ButtonNewQuestion = "Новый вопрос ❓"
	ButtonSurrender   = "Сдаться 🤷‍♂️"
	ButtonScore       = "Мой счет 🥇"
)

const (
	msgGreeting = "Приветствую.\n" +
		"Нажми «" + ButtonNewQuestion + "» для начала викторины.\n" +
		"/cancel - для отмены"
	msgFarewell = "Всего хорошего.\n" +
		"Для начала викторины введите команду /start"
	msgCorrect = "Правильно! 🥳 Поздравляю!\n" +
		"Для следующего вопроса нажми «" + ButtonNewQuestion + "»\n" +
		"/cancel - для отмены"
	msgIncorrect     = "Неправильно… 😪 Попробуешь ещё раз?"
	msgSurrenderHint = "\nМожно сдаться."
	msgPrompt        = "Нажми «" + ButtonNewQuestion + "» для начала викторины."
	msgApology       = "Что-то пошло не так 😔 Попробуйте ещё раз чуть позже."
	msgTopEmpty      = "🏆 Пока нет результатов. Будьте первым! 🎯"

	// hint appears once count_answer exceeds this
	surrenderHintAfter = 3
	topLimit           = 10
)

func questionText(question string) string {
	return "Вопрос:\n" + question
}

func revealText(answer string) string {
	return "Правильный ответ 🫣:\n" + answer
}

func scoreText(score int) string {
	return fmt.Sprintf("Ваш счет:\n%d баллов.", score)
}

func incorrectText(countAnswer int) string {
	if countAnswer > surrenderHintAfter {
		return msgIncorrect + msgSurrenderHint
	}
	return msgIncorrect
}

func topText(entries []service.LeaderboardEntry, userPosition int) string {
	if len(entries) == 0 {
		return msgTopEmpty
	}

	var b strings.Builder
	b.WriteString("🏆 Лучшие игроки\n\n")
	for i, entry := range entries {
		medal := "🔸"
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		fmt.Fprintf(&b, "%s %d. %s - %d\n", medal, i+1, entry.UserID, entry.Score)
	}
	if userPosition > 0 {
		fmt.Fprintf(&b, "\nВы на %d месте.", userPosition)
	}
	return b.String()
}
