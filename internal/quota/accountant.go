// Package quota tracks how much note text each owner stores.
package quota

import (
	"context"
	"fmt"
	"math"

	"github.com/cloudnotes/cloudnotes/internal/domain"
)

const (
	bytesPerMB = 1024 * 1024

	// LimitMB is the per-owner ceiling exposed to clients.
	LimitMB int64 = 1024
	// LimitBytes is LimitMB in bytes.
	LimitBytes int64 = LimitMB * bytesPerMB
)

// NoteSource yields every note of an owner.
type NoteSource interface {
	OwnerNotes(ctx context.Context, owner string) ([]*domain.Note, error)
}

// Accountant computes usage from scratch on every call. There is no running
// counter, so two concurrent creates may both pass the check.
type Accountant struct {
	source     NoteSource
	limitBytes int64
}

// NewAccountant builds an accountant. limitBytes <= 0 selects LimitBytes.
func NewAccountant(source NoteSource, limitBytes int64) *Accountant {
	if limitBytes <= 0 {
		limitBytes = LimitBytes
	}
	return &Accountant{source: source, limitBytes: limitBytes}
}

// LimitBytes is the configured ceiling.
func (a *Accountant) LimitBytes() int64 { return a.limitBytes }

// LimitMB is the configured ceiling in whole MB.
func (a *Accountant) LimitMB() int64 { return a.limitBytes / bytesPerMB }

// UsedBytes sums title, content and tag bytes over all of the owner's notes.
func (a *Accountant) UsedBytes(ctx context.Context, owner string) (int64, error) {
	notes, err := a.source.OwnerNotes(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to load notes for usage: %w", err)
	}
	var total int64
	for _, n := range notes {
		total += n.SizeBytes()
	}
	return total, nil
}

// Decision is the outcome of a pre-create check.
type Decision struct {
	Allowed   bool
	UsedBytes int64
	UsedMB    float64
}

// CanCreate checks whether a note with the given title and content fits.
// Tags of the candidate are not counted here; they only show up in usage
// once the note exists.
func (a *Accountant) CanCreate(ctx context.Context, owner, title, content string) (Decision, error) {
	used, err := a.UsedBytes(ctx, owner)
	if err != nil {
		return Decision{}, err
	}
	candidate := int64(len(title) + len(content))
	return Decision{
		Allowed:   used+candidate <= a.limitBytes,
		UsedBytes: used,
		UsedMB:    ToMB(used),
	}, nil
}

// ToMB converts bytes to MB rounded to two decimals.
func ToMB(b int64) float64 {
	return math.Round(float64(b)/bytesPerMB*100) / 100
}
