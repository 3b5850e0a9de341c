// Package flow is the conversation state machine. It interprets events
// against the current session state, calls into the ledger, and produces the
// next prompt. The transport stays out: handlers here work on Event values
// and return Response values.
package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/log"
	"kopilka/internal/session"
)

// Response is what the transport renders: one outgoing message, its reply
// keyboard, and the cleanup instruction when a flow has finished.
type Response struct {
	Text     string
	Keyboard [][]string
	// Done marks flow completion: the session has been discarded and Purge
	// lists every ephemeral message the flow produced, for retraction.
	Done  bool
	Purge []int
}

type Machine struct {
	ledger   ledger.Ledger
	sessions *session.Store
	recent   int
	now      func() time.Time
}

func New(l ledger.Ledger, sessions *session.Store, recentLimit int) *Machine {
	return &Machine{
		ledger:   l,
		sessions: sessions,
		recent:   recentLimit,
		now:      time.Now,
	}
}

// Handle processes one event for one user. A non-nil error means a ledger
// failure; the session is left as-is so the user can retry the interaction.
func (m *Machine) Handle(ctx context.Context, userID int64, ev Event) (Response, error) {
	sess := m.sessions.Get(userID)

	if _, ok := ev.(Back); ok && sess.State != session.StateIdle {
		return m.finish(userID, sess, msgBackToMenu), nil
	}

	switch sess.State {
	case session.StateIdle:
		return m.handleIdle(ctx, userID, sess, ev)
	case session.StateEnteringEntryData:
		return m.handleEntryData(ctx, userID, sess, ev)
	case session.StateConfirmingNewCategory:
		return m.handleConfirmCategory(ctx, userID, sess, ev)
	case session.StateChoosingRecord:
		return m.handleChooseRecord(ctx, userID, sess, ev)
	case session.StateEnteringUpdatedData:
		return m.handleUpdatedData(ctx, userID, sess, ev)
	default:
		// Unknown state left over from an old build: reset.
		return m.finish(userID, sess, msgBackToMenu), nil
	}
}

func (m *Machine) handleIdle(ctx context.Context, userID int64, sess *session.Session, ev Event) (Response, error) {
	switch e := ev.(type) {
	case SelectKind:
		if !e.Kind.Valid() {
			return Response{}, nil
		}
		sess.Kind = e.Kind
		sess.State = session.StateEnteringEntryData
		return Response{Text: msgAddPrompt, Keyboard: backKeyboard}, nil

	case SelectAction:
		rows, err := m.ledger.Recent(ctx, m.recent)
		if err != nil {
			return Response{}, fmt.Errorf("list recent entries: %w", err)
		}
		if len(rows) == 0 {
			return m.finish(userID, sess, msgNoRecords), nil
		}
		sess.Rows = rows
		sess.Action = e.Action
		sess.State = session.StateChoosingRecord
		return Response{Text: recordList(rows), Keyboard: recordKeyboard(len(rows))}, nil

	default:
		// Free text outside any flow gets no reply. Only the menu
		// buttons start a flow.
		return Response{}, nil
	}
}

func (m *Machine) handleEntryData(ctx context.Context, userID int64, sess *session.Session, ev Event) (Response, error) {
	text, ok := submittedText(ev)
	if !ok {
		return Response{Text: msgAddFormat, Keyboard: backKeyboard}, nil
	}
	in, err := core.ParseAddInput(text)
	if err != nil {
		// Format error: re-prompt in place, session untouched.
		return Response{Text: msgAddFormat, Keyboard: backKeyboard}, nil
	}

	entry := core.Entry{
		Date:      m.now(),
		Kind:      sess.Kind,
		Amount:    in.Amount,
		Primary:   in.Primary,
		Secondary: in.Secondary,
	}

	known, err := m.ledger.Categories(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("read category registry: %w", err)
	}
	if _, ok := known[entry.Pair().Key()]; ok {
		return m.commitEntry(ctx, userID, sess, entry)
	}

	sess.Pending = &entry
	sess.State = session.StateConfirmingNewCategory
	return Response{Text: confirmCategoryMessage(entry.Pair()), Keyboard: yesNoKeyboard}, nil
}

func (m *Machine) handleConfirmCategory(ctx context.Context, userID int64, sess *session.Session, ev Event) (Response, error) {
	if sess.Pending == nil {
		return m.finish(userID, sess, msgBackToMenu), nil
	}
	if c, ok := ev.(Confirm); ok && c.Yes {
		entry := *sess.Pending
		// Category first, entry second. If interrupted in between, the
		// registry may hold a pair with no matching entry; accepted.
		if err := m.ledger.AddCategory(ctx, entry.Primary, entry.Secondary); err != nil {
			return Response{}, fmt.Errorf("register category: %w", err)
		}
		return m.commitEntry(ctx, userID, sess, entry)
	}
	// "Нет" or anything else discards the pending entry without touching
	// the store.
	return m.finish(userID, sess, msgDiscarded), nil
}

func (m *Machine) handleChooseRecord(ctx context.Context, userID int64, sess *session.Session, ev Event) (Response, error) {
	sel, ok := ev.(SelectRecord)
	if !ok || sel.Position < 1 || sel.Position > len(sess.Rows) {
		return Response{Text: msgPickNumber, Keyboard: recordKeyboard(len(sess.Rows))}, nil
	}
	sess.Selected = sel.Position

	switch sess.Action {
	case session.ActionDelete:
		rowNum, err := m.selectedRowNumber(ctx, sess)
		if err != nil {
			return Response{}, err
		}
		if err := m.ledger.Delete(ctx, rowNum); err != nil {
			return Response{}, fmt.Errorf("delete row %d: %w", rowNum, err)
		}
		log.FromContext(ctx).WithComponent(log.ComponentFlow).InfoContext(ctx, "entry deleted", "user_id", userID, "row", rowNum)
		return m.finish(userID, sess, msgDeleted), nil

	case session.ActionEdit:
		sess.State = session.StateEnteringUpdatedData
		old := sess.Rows[sess.Selected-1]
		return Response{Text: editPromptMessage(old), Keyboard: backKeyboard}, nil

	default:
		return m.finish(userID, sess, msgBackToMenu), nil
	}
}

func (m *Machine) handleUpdatedData(ctx context.Context, userID int64, sess *session.Session, ev Event) (Response, error) {
	text, ok := submittedText(ev)
	if !ok {
		return Response{Text: msgUpdateFormat, Keyboard: backKeyboard}, nil
	}
	in, err := core.ParseUpdateInput(text)
	switch {
	case errors.Is(err, core.ErrBadDate):
		return Response{Text: msgBadDate, Keyboard: backKeyboard}, nil
	case errors.Is(err, core.ErrBadAmount):
		return Response{Text: msgBadAmount, Keyboard: backKeyboard}, nil
	case err != nil:
		return Response{Text: msgUpdateFormat, Keyboard: backKeyboard}, nil
	}

	old := sess.Rows[sess.Selected-1]
	// Kind is immutable through the update path.
	entry := core.Entry{
		Date:      in.Date,
		Kind:      old.Kind,
		Amount:    in.Amount,
		Primary:   in.Primary,
		Secondary: in.Secondary,
	}

	rowNum, err := m.selectedRowNumber(ctx, sess)
	if err != nil {
		return Response{}, err
	}
	if err := m.ledger.Update(ctx, rowNum, entry); err != nil {
		return Response{}, fmt.Errorf("update row %d: %w", rowNum, err)
	}
	log.FromContext(ctx).WithComponent(log.ComponentFlow).InfoContext(ctx, "entry updated", "user_id", userID, "row", rowNum)
	return m.finish(userID, sess, msgUpdated), nil
}

func (m *Machine) commitEntry(ctx context.Context, userID int64, sess *session.Session, e core.Entry) (Response, error) {
	if err := m.ledger.Append(ctx, e); err != nil {
		return Response{}, fmt.Errorf("append entry: %w", err)
	}
	log.FromContext(ctx).WithComponent(log.ComponentFlow).InfoContext(ctx, "entry added",
		"user_id", userID, "kind", string(e.Kind), "amount", e.Amount.String())
	return m.finish(userID, sess, addedMessage(e)), nil
}

// selectedRowNumber recomputes the 1-based sheet row of the selection from a
// fresh row count immediately before the mutating call. The count from the
// snapshot read is never reused. Correctness under concurrent external edits
// to the sheet is not guaranteed; single writer assumed.
func (m *Machine) selectedRowNumber(ctx context.Context, sess *session.Session) (int, error) {
	total, err := m.ledger.RowCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("fresh row count: %w", err)
	}
	// total data rows - shown window + position, plus 1 for the header row.
	return total - len(sess.Rows) + sess.Selected + 1, nil
}

// finish clears the session and returns the single final confirmation along
// with the accumulated message ids to purge.
func (m *Machine) finish(userID int64, sess *session.Session, text string) Response {
	purge := sess.Messages
	m.sessions.Clear(userID)
	return Response{Text: text, Keyboard: MainMenu, Done: true, Purge: purge}
}

func submittedText(ev Event) (string, bool) {
	switch e := ev.(type) {
	case SubmitText:
		return e.Text, true
	case SelectRecord:
		// A bare number in a data-entry state is just malformed text.
		return "", false
	default:
		return "", false
	}
}
