// Package core holds the domain model and the parsing of the free-text
// conversational input forms.
//
// Parsing is strict on structure: fields split on comma, whitespace trimmed,
// exact field count required. It is permissive on values: negative and zero
// amounts pass, corrections are entered as negative rows.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrFieldCount    = errors.New("wrong number of comma-separated fields")
	ErrBadAmount     = errors.New("amount is not a number")
	ErrBadDate       = errors.New("date is not a calendar date")
	ErrEmptyCategory = errors.New("category must not be empty")
)

type (
	// AddInput is the parsed "amount, cat1, cat2" form.
	AddInput struct {
		Amount    decimal.Decimal
		Primary   string
		Secondary string
	}

	// UpdateInput is the parsed "date, amount, cat1, cat2" form.
	UpdateInput struct {
		Date      time.Time
		Amount    decimal.Decimal
		Primary   string
		Secondary string
	}
)

// ParseAddInput parses the 3-field add form. Any other field count is a
// format error, not a best-effort parse.
func ParseAddInput(text string) (AddInput, error) {
	fields, err := splitFields(text, 3)
	if err != nil {
		return AddInput{}, err
	}
	amount, err := decimal.NewFromString(normalizeDecimal(fields[0]))
	if err != nil {
		return AddInput{}, ErrBadAmount
	}
	if fields[1] == "" || fields[2] == "" {
		return AddInput{}, ErrEmptyCategory
	}
	return AddInput{
		Amount:    amount,
		Primary:   fields[1],
		Secondary: fields[2],
	}, nil
}

// ParseUpdateInput parses the 4-field update form. Date and amount failures
// map to distinct errors so the prompt can name the broken field.
func ParseUpdateInput(text string) (UpdateInput, error) {
	fields, err := splitFields(text, 4)
	if err != nil {
		return UpdateInput{}, err
	}
	date, err := time.Parse(DateLayout, fields[0])
	if err != nil {
		return UpdateInput{}, ErrBadDate
	}
	amount, err := decimal.NewFromString(normalizeDecimal(fields[1]))
	if err != nil {
		return UpdateInput{}, ErrBadAmount
	}
	if fields[2] == "" || fields[3] == "" {
		return UpdateInput{}, ErrEmptyCategory
	}
	return UpdateInput{
		Date:      date,
		Amount:    amount,
		Primary:   fields[2],
		Secondary: fields[3],
	}, nil
}

func splitFields(text string, n int) ([]string, error) {
	parts := strings.Split(text, ",")
	if len(parts) != n {
		return nil, ErrFieldCount
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, nil
}
