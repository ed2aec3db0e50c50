package parser

import (
	"regexp"
	"strings"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

var answerRegex = regexp.MustCompile(logPrefix + `\[Answer\](.*)$`)

// Questionnaire parses questionnaire answers written as
// "q1","a1","q2","a2".
type Questionnaire struct{}

// NewQuestionnaire returns a Questionnaire parser.
func NewQuestionnaire() *Questionnaire {
	return &Questionnaire{}
}

// Parse implements EntryParser.
func (q *Questionnaire) Parse(raw entry.Raw) (entry.Entry, error) {
	m := answerRegex.FindStringSubmatch(string(raw))
	if m == nil {
		return nil, nil
	}
	ts, err := timestampFromMatch(m)
	if err != nil {
		return nil, err
	}
	return &entry.QuestionnaireAnswer{
		Timestamp:         ts,
		AnswerForQuestion: parseAnswers(m[bodyGroup]),
	}, nil
}

// parseAnswers pairs items by position. A trailing unpaired item is
// dropped. Quotes inside items are not unescaped.
func parseAnswers(body string) map[string]string {
	answers := make(map[string]string)
	if len(body) < 3 {
		return answers
	}
	items := strings.Split(body[1:len(body)-1], `","`)
	for i := 0; i+1 < len(items); i += 2 {
		answers[items[i]] = items[i+1]
	}
	return answers
}
