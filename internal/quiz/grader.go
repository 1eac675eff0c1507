// Package quiz grades a learner's answers against a module quiz. Grading is a
// pure function: it has no side effects and keeps no attempt history, so a
// retry simply grades a fresh submission.
package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/secureaware/internal/catalog"
)

// PassThreshold is the inclusive score a submission needs to pass.
const PassThreshold = 70.0

var (
	// ErrIncompleteSubmission marks a submission that leaves questions unanswered.
	ErrIncompleteSubmission = errors.New("quiz: incomplete submission")
	// ErrEmptyQuiz marks a quiz without questions, which is a catalog data error.
	ErrEmptyQuiz = errors.New("quiz: quiz has no questions")
)

// IncompleteSubmissionError lists the question ids that had no answer.
type IncompleteSubmissionError struct {
	Missing []string
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("quiz: incomplete submission: %d unanswered (%s)", len(e.Missing), strings.Join(e.Missing, ", "))
}

// Unwrap lets callers match with errors.Is(err, ErrIncompleteSubmission).
func (e *IncompleteSubmissionError) Unwrap() error {
	return ErrIncompleteSubmission
}

// Submission maps question ids to the selected option value.
type Submission map[string]string

// AnswerResult reports how one question was answered.
type AnswerResult struct {
	QuestionID    string `json:"question_id"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// Result is the verdict for a full submission.
type Result struct {
	Score   float64        `json:"score"`
	Passed  bool           `json:"passed"`
	Correct int            `json:"correct"`
	Total   int            `json:"total"`
	Answers []AnswerResult `json:"answers"`
}

// Grader scores submissions against a fixed pass threshold.
type Grader struct {
	threshold float64
}

// NewGrader returns a grader with the given threshold. Values outside
// (0, 100] fall back to PassThreshold.
func NewGrader(threshold float64) Grader {
	if threshold <= 0 || threshold > 100 {
		threshold = PassThreshold
	}
	return Grader{threshold: threshold}
}

// Threshold returns the score needed to pass.
func (g Grader) Threshold() float64 {
	if g.threshold == 0 {
		return PassThreshold
	}
	return g.threshold
}

// Grade scores the submission with the default threshold.
func Grade(questions []catalog.QuizQuestion, submission Submission) (Result, error) {
	return NewGrader(PassThreshold).Grade(questions, submission)
}

// Grade scores the submission. Every question must have a non-empty answer;
// otherwise an *IncompleteSubmissionError is returned and nothing is scored.
func (g Grader) Grade(questions []catalog.QuizQuestion, submission Submission) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrEmptyQuiz
	}
	var missing []string
	for _, q := range questions {
		if submission[q.ID] == "" {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		return Result{}, &IncompleteSubmissionError{Missing: missing}
	}

	result := Result{
		Total:   len(questions),
		Answers: make([]AnswerResult, 0, len(questions)),
	}
	for _, q := range questions {
		selected := submission[q.ID]
		correct := selected == q.CorrectAnswer
		if correct {
			result.Correct++
		}
		result.Answers = append(result.Answers, AnswerResult{
			QuestionID:    q.ID,
			Selected:      selected,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
		})
	}
	result.Score = 100 * float64(result.Correct) / float64(result.Total)
	result.Passed = result.Score >= g.Threshold()
	return result, nil
}
