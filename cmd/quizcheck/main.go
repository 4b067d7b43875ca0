// Command quizcheck parses a question corpus and reports what the bots
// would load from it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/PoluyanbIch/GoQuizBot/internal/service"
)

func main() {
	path := flag.String("path", "./questions", "corpus file or directory")
	encoding := flag.String("encoding", service.EncodingKOI8R, "corpus encoding: koi8-r or utf-8")
	flag.Parse()

	questions, err := service.LoadQuizQuestions(*path, *encoding)
	if err != nil {
		logrus.WithField("path", *path).WithError(err).Error("corpus check failed")
		os.Exit(1)
	}

	digests := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		digests[q.Digest()] = struct{}{}
	}
	fmt.Printf("questions: %d\nunique: %d\nduplicates: %d\n",
		len(questions), len(digests), len(questions)-len(digests))
}
