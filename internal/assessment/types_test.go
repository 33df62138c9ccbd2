package assessment

import (
	"errors"
	"testing"
	"time"
)

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{
			name: "single choice ok",
			q:    Question{Kind: KindSingleChoice, Options: []string{"a", "b"}, AnswerIndex: 1, Difficulty: DifficultyEasy},
		},
		{
			name:    "single choice index out of range",
			q:       Question{Kind: KindSingleChoice, Options: []string{"a", "b"}, AnswerIndex: 2, Difficulty: DifficultyEasy},
			wantErr: true,
		},
		{
			name: "sequence ok",
			q:    Question{Kind: KindOrderedSequence, AnswerItems: []string{"1", "2"}, Difficulty: DifficultyMedium},
		},
		{
			name:    "recall without items",
			q:       Question{Kind: KindFreeRecall, Difficulty: DifficultyHard},
			wantErr: true,
		},
		{
			name:    "spelling without word",
			q:       Question{Kind: KindSpellingBlank, Difficulty: DifficultyEasy},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			q:       Question{Kind: "essay", Difficulty: DifficultyEasy},
			wantErr: true,
		},
		{
			name:    "unknown difficulty",
			q:       Question{Kind: KindSpellingBlank, AnswerText: "rhythm", Difficulty: "extreme"},
			wantErr: true,
		},
		{
			name:    "negative duration",
			q:       Question{Kind: KindSpellingBlank, AnswerText: "rhythm", Difficulty: DifficultyEasy, PresentationDuration: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestQuestionTimed(t *testing.T) {
	q := Question{PresentationDuration: 5 * time.Second}
	if !q.Timed() {
		t.Error("expected timed question")
	}
	q.PresentationDuration = 0
	if q.Timed() {
		t.Error("expected untimed question")
	}
}

func TestSubmissionConstructors(t *testing.T) {
	if s := ChoiceAnswer(0); !s.Chosen || s.Choice != 0 {
		t.Errorf("ChoiceAnswer(0) = %+v", s)
	}
	if s := (Submission{}); s.Chosen {
		t.Error("zero submission should not hold a choice")
	}
	if s := ItemsAnswer("a", "b"); len(s.Items) != 2 {
		t.Errorf("ItemsAnswer len = %d, want 2", len(s.Items))
	}
	if s := TextAnswer("because"); s.Text != "because" {
		t.Errorf("TextAnswer = %q", s.Text)
	}
}
