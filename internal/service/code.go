// Package service implements the reservation lifecycle: the only code
// allowed to move reservations between states and to mutate event
// attendee counts, plus the code generator and statistics aggregation
// it relies on.
package service

import (
    "context"

    "github.com/iliyamo/event-reservation/internal/monitoring"
    "github.com/iliyamo/event-reservation/internal/repository"
    "github.com/iliyamo/event-reservation/internal/utils"
)

// CodeChecker answers whether a reservation code is already assigned.
// Satisfied by repository.ReservationRepo.
type CodeChecker interface {
    CodeExists(ctx context.Context, code string) (bool, error)
}

// Code generation bounds.  Candidates start at codeLength characters;
// after attemptsPerLength consecutive collisions the length grows by
// two, shrinking the collision probability by three orders of
// magnitude each step.  Past maxCodeAttempts total candidates the
// generator gives up with ErrCodeExhausted instead of spinning forever
// on a pathological collision run.
const (
    codeLength        = 8
    attemptsPerLength = 4
    maxCodeAttempts   = 12
)

// CodeGenerator produces reservation codes that are unique across all
// reservations at the moment of assignment.  The probe-then-insert
// window is still racy in theory; the unique index on
// reservations.reservation_code backstops it and the caller retries on
// that conflict.
type CodeGenerator struct {
    store CodeChecker
}

// NewCodeGenerator returns a CodeGenerator probing uniqueness against
// the given store.
func NewCodeGenerator(store CodeChecker) *CodeGenerator {
    return &CodeGenerator{store: store}
}

// Generate returns a collision-free uppercase [A-Z0-9] code, or
// ErrCodeExhausted when the retry bound is exceeded.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
    length := codeLength
    for attempt := 0; attempt < maxCodeAttempts; attempt++ {
        if attempt > 0 && attempt%attemptsPerLength == 0 {
            length += 2
        }
        code, err := utils.ReservationCode(length)
        if err != nil {
            return "", err
        }
        exists, err := g.store.CodeExists(ctx, code)
        if err != nil {
            return "", err
        }
        if !exists {
            return code, nil
        }
        monitoring.CodeRetry()
    }
    return "", repository.ErrCodeExhausted
}
