package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Доход"
	Expense Kind = "Расход"
)

// DateLayout is the ISO date form used in the ledger and in user input.
const DateLayout = "2006-01-02"

type (
	Kind string

	// Entry is one financial transaction, stored 1:1 as a ledger row.
	// The ledger row is the single source of truth; an Entry held during a
	// conversation is only a snapshot.
	Entry struct {
		Date      time.Time
		Kind      Kind
		Amount    decimal.Decimal
		Primary   string // primary category, literal text as typed
		Secondary string // secondary category, literal text as typed
	}

	// CategoryPair is a recognized (primary, secondary) category
	// combination. Identity is the normalized Key, not the literal text.
	CategoryPair struct {
		Primary   string
		Secondary string
	}
)

var (
	ErrInvalidKind = errors.New("invalid entry kind")
	ErrShortRow    = errors.New("row has fewer than 5 columns")
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// Columns returns the 5-column row form of the entry:
// [date, kind, amount, primary, secondary].
func (e Entry) Columns() []string {
	return []string{
		e.Date.Format(DateLayout),
		string(e.Kind),
		e.Amount.String(),
		e.Primary,
		e.Secondary,
	}
}

// Pair returns the entry's category pair.
func (e Entry) Pair() CategoryPair {
	return CategoryPair{Primary: e.Primary, Secondary: e.Secondary}
}

// ParseRow converts a 5-column ledger row back into an Entry.
func ParseRow(cols []string) (Entry, error) {
	if len(cols) < 5 {
		return Entry{}, ErrShortRow
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(cols[0]))
	if err != nil {
		return Entry{}, fmt.Errorf("parse row date %q: %w", cols[0], err)
	}
	amount, err := decimal.NewFromString(normalizeDecimal(cols[2]))
	if err != nil {
		return Entry{}, fmt.Errorf("parse row amount %q: %w", cols[2], err)
	}
	return Entry{
		Date:      date,
		Kind:      Kind(strings.TrimSpace(cols[1])),
		Amount:    amount,
		Primary:   strings.TrimSpace(cols[3]),
		Secondary: strings.TrimSpace(cols[4]),
	}, nil
}

// Key returns the normalized identity of the pair.
func (p CategoryPair) Key() string {
	return Normalize(p.Primary) + "/" + Normalize(p.Secondary)
}

// Normalize folds a category name to its identity form: lower case, letters
// of the two supported alphabets (Latin and Cyrillic) and digits only.
// "Food", "food " and "FOOD" collapse to the same identity.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || unicode.In(r, unicode.Latin, unicode.Cyrillic) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func normalizeDecimal(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}
