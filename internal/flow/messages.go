package flow

import (
	"fmt"
	"strconv"
	"strings"

	"kopilka/internal/core"
)

// Button labels. The transport matches incoming text against these.
const (
	BtnIncome  = "Доход"
	BtnExpense = "Расход"
	BtnEdit    = "✏️ Изменить"
	BtnDelete  = "🗑 Удалить"
	BtnBack    = "⬅ Назад"
	BtnYes     = "Да"
	BtnNo      = "Нет"
)

const (
	msgBackToMenu = "↩ Возврат в главное меню"
	msgAddPrompt  = "Введите: сумма, категория 1, категория 2"
	msgAddFormat  = "Ошибка формата. Введите: сумма, категория 1, категория 2\nПример: 1200, еда, кафе"

	msgUpdatePrompt = "Введите новые данные: дата, сумма, категория 1, категория 2\nПример: 2026-01-15, 1500, транспорт, метро"
	msgUpdateFormat = "Ошибка формата. Введите: дата, сумма, категория 1, категория 2\nПример: 2026-01-15, 1500, транспорт, метро"
	msgBadDate      = "Неверная дата. Формат: ГГГГ-ММ-ДД\nПример: 2026-01-15"
	msgBadAmount    = "Неверная сумма. Пример: 1500"

	msgNoRecords  = "Нет доступных записей."
	msgPickNumber = "Введите номер записи, нажав на одну из кнопок."
	msgDeleted    = "🗑 Запись удалена."
	msgUpdated    = "✔ Запись обновлена."
	msgDiscarded  = "Запись отменена."
	msgListHeader = "Выберите запись для изменения или удаления:"
)

// MainMenu is the top-level keyboard.
var MainMenu = [][]string{
	{BtnIncome, BtnExpense},
	{BtnEdit, BtnDelete},
}

var (
	backKeyboard  = [][]string{{BtnBack}}
	yesNoKeyboard = [][]string{{BtnYes, BtnNo}, {BtnBack}}
)

func entryLine(e core.Entry) string {
	return fmt.Sprintf("%s — %s %s₽ — %s/%s",
		e.Date.Format(core.DateLayout), e.Kind, e.Amount.String(), e.Primary, e.Secondary)
}

func recordList(rows []core.Entry) string {
	var b strings.Builder
	b.WriteString(msgListHeader)
	for i, e := range rows {
		b.WriteString(fmt.Sprintf("\n%d) %s", i+1, entryLine(e)))
	}
	return b.String()
}

func recordKeyboard(n int) [][]string {
	var rows [][]string
	for i := 1; i <= n; i++ {
		rows = append(rows, []string{strconv.Itoa(i)})
	}
	return append(rows, []string{BtnBack})
}

func addedMessage(e core.Entry) string {
	return fmt.Sprintf("✔ Запись добавлена: <b>%s</b> %s₽ — %s / %s",
		e.Kind, e.Amount.String(), e.Primary, e.Secondary)
}

func confirmCategoryMessage(p core.CategoryPair) string {
	return fmt.Sprintf("Новая категория: <b>%s / %s</b>\nДобавить её в справочник?", p.Primary, p.Secondary)
}

func editPromptMessage(e core.Entry) string {
	return fmt.Sprintf("Текущая запись:\n%s\n\n%s", entryLine(e), msgUpdatePrompt)
}
