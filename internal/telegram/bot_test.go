package telegram

import (
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/flow"
	"kopilka/internal/session"
)

func TestMapEvent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want flow.Event
	}{
		{"back button", "⬅ Назад", flow.Back{}},
		{"back with padding", "  ⬅ Назад ", flow.Back{}},
		{"income", "Доход", flow.SelectKind{Kind: core.Income}},
		{"expense", "Расход", flow.SelectKind{Kind: core.Expense}},
		{"edit", "✏️ Изменить", flow.SelectAction{Action: session.ActionEdit}},
		{"delete", "🗑 Удалить", flow.SelectAction{Action: session.ActionDelete}},
		{"yes", "Да", flow.Confirm{Yes: true}},
		{"no", "Нет", flow.Confirm{Yes: false}},
		{"record number", "3", flow.SelectRecord{Position: 3}},
		{"padded number", " 12 ", flow.SelectRecord{Position: 12}},
		{"negative number still a selection", "-1", flow.SelectRecord{Position: -1}},
		{"data form is free text", "1200, еда, кафе", flow.SubmitText{Text: "1200, еда, кафе"}},
		{"decimal is free text", "3.5", flow.SubmitText{Text: "3.5"}},
		{"plain text", "привет", flow.SubmitText{Text: "привет"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapEvent(tt.text); got != tt.want {
				t.Errorf("MapEvent(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestReplyKeyboardLayout(t *testing.T) {
	kb := replyKeyboard([][]string{{"Доход", "Расход"}, {"⬅ Назад"}})
	if len(kb.Keyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(kb.Keyboard))
	}
	if len(kb.Keyboard[0]) != 2 || len(kb.Keyboard[1]) != 1 {
		t.Errorf("row sizes = %d,%d", len(kb.Keyboard[0]), len(kb.Keyboard[1]))
	}
	if kb.Keyboard[0][0].Text != "Доход" {
		t.Errorf("first button = %q", kb.Keyboard[0][0].Text)
	}
	if !kb.OneTimeKeyboard {
		t.Error("keyboard should be one-time")
	}
}
