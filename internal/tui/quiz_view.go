package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/secureaware/internal/catalog"
	"github.com/kingrea/secureaware/internal/quiz"
	"github.com/kingrea/secureaware/internal/training"
)

type quizSubmittedMsg struct {
	moduleID string
	outcome  training.Outcome
	err      error
}

// quizView walks the learner through one quiz, one question at a time.
type quizView struct {
	svc     *training.Service
	mod     catalog.Module
	index   int
	cursor  int
	answers quiz.Submission
	outcome *training.Outcome
	warning string
	pending bool
	done    bool
}

func newQuizView(svc *training.Service) *quizView {
	return &quizView{svc: svc}
}

// start discards any earlier attempt; retries always grade from scratch.
func (v *quizView) start(mod catalog.Module) {
	v.mod = mod
	v.index = 0
	v.cursor = 0
	v.answers = quiz.Submission{}
	v.outcome = nil
	v.warning = ""
	v.pending = false
	v.done = false
}

func (v *quizView) question() catalog.QuizQuestion {
	return v.mod.Quiz[v.index]
}

func (v *quizView) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok || len(v.mod.Quiz) == 0 || v.pending {
		return nil
	}
	if v.outcome != nil {
		switch k.String() {
		case "r":
			v.start(v.mod)
		case "enter":
			v.done = true
		}
		return nil
	}
	q := v.question()
	switch k.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(q.Options)-1 {
			v.cursor++
		}
	case "left", "h":
		v.move(v.index - 1)
	case "right", "l":
		v.move(v.index + 1)
	case " ", "enter":
		v.answers[q.ID] = q.Options[v.cursor].Value
		v.warning = ""
		if v.index < len(v.mod.Quiz)-1 {
			v.move(v.index + 1)
			return nil
		}
		if k.String() == "enter" {
			return v.submit()
		}
	case "s":
		return v.submit()
	}
	return nil
}

func (v *quizView) move(index int) {
	if index < 0 || index >= len(v.mod.Quiz) {
		return
	}
	v.index = index
	v.cursor = 0
	selected := v.answers[v.question().ID]
	for i, opt := range v.question().Options {
		if opt.Value == selected {
			v.cursor = i
		}
	}
}

func (v *quizView) submit() tea.Cmd {
	for _, q := range v.mod.Quiz {
		if v.answers[q.ID] == "" {
			v.warning = "Please answer all questions before submitting."
			return nil
		}
	}
	v.pending = true
	svc, moduleID := v.svc, v.mod.ID
	answers := make(quiz.Submission, len(v.answers))
	for id, value := range v.answers {
		answers[id] = value
	}
	return func() tea.Msg {
		outcome, err := svc.SubmitQuiz(moduleID, answers)
		return quizSubmittedMsg{moduleID: moduleID, outcome: outcome, err: err}
	}
}

func (v *quizView) finish(msg quizSubmittedMsg) {
	v.pending = false
	if msg.moduleID != v.mod.ID {
		return
	}
	if msg.err != nil {
		var incomplete *quiz.IncompleteSubmissionError
		if errors.As(msg.err, &incomplete) {
			v.warning = "Please answer all questions before submitting."
			return
		}
		v.warning = msg.err.Error()
		return
	}
	outcome := msg.outcome
	v.outcome = &outcome
}

func (v *quizView) View() string {
	if len(v.mod.Quiz) == 0 {
		return "This module has no quiz."
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Quiz · " + v.mod.Title)
	if v.outcome != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, "", v.resultView())
	}
	q := v.question()
	lines := []string{
		title,
		lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("Question %d of %d · %d answered", v.index+1, len(v.mod.Quiz), len(v.answers))),
		"",
		lipgloss.NewStyle().Bold(true).Render(q.Question),
		"",
	}
	for i, opt := range q.Options {
		marker := "  "
		if i == v.cursor {
			marker = "› "
		}
		radio := "( )"
		if v.answers[q.ID] == opt.Value {
			radio = "(•)"
		}
		line := fmt.Sprintf("%s%s %s", marker, radio, opt.Label)
		if i == v.cursor {
			line = lipgloss.NewStyle().Foreground(accentColor).Render(line)
		}
		lines = append(lines, line)
	}
	if v.warning != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(badColor).Render(v.warning))
	}
	if v.pending {
		lines = append(lines, "", "Grading...")
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("↑/↓ → choose    Enter → answer    ←/→ → previous/next    s → submit"))
	return strings.Join(lines, "\n")
}

func (v *quizView) resultView() string {
	res := v.outcome.Result
	var lines []string
	if res.Passed {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(goodColor).Render(fmt.Sprintf("Passed · %.0f%% (%d/%d correct)", res.Score, res.Correct, res.Total)))
		if v.outcome.NewlyCompleted {
			lines = append(lines, "Module completed. Your certificate is ready.")
		} else if v.outcome.AlreadyCompleted {
			lines = append(lines, "You had already completed this module.")
		}
	} else {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(badColor).Render(fmt.Sprintf("Not passed · %.0f%% (%d/%d correct)", res.Score, res.Correct, res.Total)))
		lines = append(lines, fmt.Sprintf("You need %.0f%% to pass. Review the content and try again.", v.svc.Settings().PassThreshold))
	}
	lines = append(lines, "")
	for i, ans := range res.Answers {
		q := v.mod.Quiz[i]
		mark := lipgloss.NewStyle().Foreground(goodColor).Render("✓")
		if !ans.Correct {
			mark = lipgloss.NewStyle().Foreground(badColor).Render("✗")
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, q.Question))
		if !ans.Correct {
			if opt, ok := q.Option(ans.CorrectAnswer); ok {
				lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render("   Correct answer: "+opt.Label))
			}
		}
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("r → retry    Enter → back to modules"))
	return strings.Join(lines, "\n")
}
