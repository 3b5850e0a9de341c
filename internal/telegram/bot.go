// Package telegram adapts Telegram updates to state-machine events and
// renders responses back as messages with reply keyboards.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"kopilka/internal/core"
	"kopilka/internal/flow"
	"kopilka/internal/identity"
	"kopilka/internal/ledger"
	"kopilka/internal/log"
	"kopilka/internal/session"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	machine  *flow.Machine
	sessions *session.Store
	identity *identity.Store
	prov     ledger.Provisioner
	allowed  int64
}

func New(token string, allowedUserID int64, machine *flow.Machine, sessions *session.Store, ids *identity.Store, prov ledger.Provisioner) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Bot{
		api:      api,
		machine:  machine,
		sessions: sessions,
		identity: ids,
		prov:     prov,
		allowed:  allowedUserID,
	}, nil
}

// Run consumes updates by long polling until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	log.Default().WithComponent(log.ComponentTelegram).InfoContext(ctx, "bot started", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	// One operator. Everyone else is dropped silently: no reply, no state.
	if msg.From == nil || msg.From.ID != b.allowed {
		return
	}

	logger := log.Default().WithComponent(log.ComponentTelegram).
		With("interaction_id", uuid.NewString(), "user_id", msg.From.ID)
	ctx = log.WithContext(ctx, logger)

	if msg.IsCommand() && msg.Command() == "start" {
		b.handleStart(ctx, logger, msg)
		return
	}

	sess := b.sessions.Get(msg.From.ID)
	sess.TrackMessage(msg.MessageID)

	resp, err := b.machine.Handle(ctx, msg.From.ID, MapEvent(msg.Text))
	if err != nil {
		// Ledger failure: the session is preserved for retry; the
		// interaction itself is lost.
		logger.ErrorContext(ctx, "interaction failed", "error", err)
		return
	}
	if resp.Text == "" {
		return
	}

	sent, err := b.send(msg.Chat.ID, resp.Text, resp.Keyboard)
	if err != nil {
		logger.ErrorContext(ctx, "send reply", "error", err)
		return
	}

	if resp.Done {
		b.purge(ctx, logger, msg.Chat.ID, resp.Purge)
	} else {
		b.sessions.Get(msg.From.ID).TrackMessage(sent.MessageID)
	}
}

// handleStart provisions the spreadsheet on first run and replies with its
// link afterwards. It does not touch any in-progress session.
func (b *Bot) handleStart(ctx context.Context, logger *log.Logger, msg *tgbotapi.Message) {
	id, err := b.identity.Load()
	if err != nil {
		logger.ErrorContext(ctx, "load spreadsheet identity", "error", err)
		return
	}

	var text string
	if id.IsZero() {
		newID, url, err := b.prov.Provision(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "provision spreadsheet", "error", err)
			return
		}
		id = identity.Identity{SpreadsheetID: newID, URL: url}
		if err := b.identity.Save(id); err != nil {
			logger.ErrorContext(ctx, "save spreadsheet identity", "error", err)
			return
		}
		logger.InfoContext(ctx, "spreadsheet identity saved", "spreadsheet_id", newID)
		text = "Таблица создана:\n" + url
	} else {
		text = "Таблица:\n" + id.URL
	}

	if _, err := b.send(msg.Chat.ID, text, flow.MainMenu); err != nil {
		logger.ErrorContext(ctx, "send start reply", "error", err)
	}
}

func (b *Bot) send(chatID int64, text string, keyboard [][]string) (tgbotapi.Message, error) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	if len(keyboard) > 0 {
		out.ReplyMarkup = replyKeyboard(keyboard)
	}
	return b.api.Send(out)
}

// purge retracts the flow's intermediate messages, leaving only the final
// confirmation visible.
func (b *Bot) purge(ctx context.Context, logger *log.Logger, chatID int64, ids []int) {
	for _, id := range ids {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, id)); err != nil {
			logger.WarnContext(ctx, "delete flow message", "message_id", id, "error", err)
		}
	}
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, btns)
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.OneTimeKeyboard = true
	return kb
}

// MapEvent translates message text into a state-machine event: known button
// labels become typed events, a bare integer selects a record, anything else
// is free text.
func MapEvent(text string) flow.Event {
	switch strings.TrimSpace(text) {
	case flow.BtnBack:
		return flow.Back{}
	case flow.BtnIncome:
		return flow.SelectKind{Kind: core.Income}
	case flow.BtnExpense:
		return flow.SelectKind{Kind: core.Expense}
	case flow.BtnEdit:
		return flow.SelectAction{Action: session.ActionEdit}
	case flow.BtnDelete:
		return flow.SelectAction{Action: session.ActionDelete}
	case flow.BtnYes:
		return flow.Confirm{Yes: true}
	case flow.BtnNo:
		return flow.Confirm{Yes: false}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		return flow.SelectRecord{Position: n}
	}
	return flow.SubmitText{Text: text}
}
