package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const (
	questionMarker = "Вопрос"
	answerMarker   = "Ответ"
)

// Поддерживаемые кодировки файлов с вопросами
const (
	EncodingKOI8R = "koi8-r"
	EncodingUTF8  = "utf-8"
)

// ParseQuizQuestions парсит блоки, разделенные пустой строкой. Блок с "Вопрос"
// содержит вопрос после строки заголовка, блок с "Ответ" содержит ответ.
// Пара добавляется, когда есть и вопрос, и ответ.
func ParseQuizQuestions(r io.Reader) ([]QuizQuestion, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read quiz file: %w", err)
	}

	content := strings.ReplaceAll(string(raw), "\r\n", "\n")

	var (
		questions              []QuizQuestion
		question, answer       string
		hasQuestion, hasAnswer bool
	)

	for _, block := range strings.Split(content, "\n\n") {
		block = strings.Trim(block, "\n")
		switch {
		case strings.Contains(block, questionMarker):
			question = blockBody(block)
			hasQuestion = true
		case strings.Contains(block, answerMarker):
			answer = blockBody(block)
			hasAnswer = true
		}

		if hasQuestion && hasAnswer {
			// Пропускаем ответы, от которых после нормализации ничего не осталось
			if normalized := NormalizeAnswer(answer); normalized != "" {
				questions = append(questions, QuizQuestion{
					Question: joinLines(question),
					Answer:   normalized,
				})
			}
			hasQuestion, hasAnswer = false, false
		}
	}

	return questions, nil
}

// NormalizeAnswer отрезает уточнения (все после первой ".", затем после
// первой "("), приводит к нижнему регистру и убирает кавычки
func NormalizeAnswer(answer string) string {
	if idx := strings.Index(answer, "."); idx != -1 {
		answer = answer[:idx]
	}
	if idx := strings.Index(answer, "("); idx != -1 {
		answer = answer[:idx]
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return strings.ReplaceAll(answer, `"`, "")
}

// LoadQuizQuestions загружает вопросы из файла или из всех файлов каталога.
// Пустой результат - ошибка.
func LoadQuizQuestions(path, encoding string) ([]QuizQuestion, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat questions path: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = listCorpusFiles(path)
		if err != nil {
			return nil, err
		}
	}

	var questions []QuizQuestion
	for _, file := range files {
		parsed, err := loadQuizFile(file, encoding)
		if err != nil {
			return nil, err
		}
		questions = append(questions, parsed...)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyBank)
	}
	return questions, nil
}

func loadQuizFile(path, encoding string) ([]QuizQuestion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingKOI8R:
		r = charmap.KOI8R.NewDecoder().Reader(file)
	case EncodingUTF8:
	default:
		return nil, fmt.Errorf("unsupported questions encoding %q", encoding)
	}

	questions, err := ParseQuizQuestions(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return questions, nil
}

func listCorpusFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read questions dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func blockBody(block string) string {
	if idx := strings.Index(block, "\n"); idx != -1 {
		return block[idx+1:]
	}
	return block
}

func joinLines(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
