package service

import (
	"context"
	"errors"

	"go-handicraft-ops/internal/ws"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the authenticated user performing a mutation.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

func (a Actor) auditID() string {
	if a.ID == uuid.Nil {
		return ""
	}
	return a.ID.String()
}

func (a Actor) wsActor() *ws.Actor {
	if a.ID == uuid.Nil {
		return nil
	}
	return &ws.Actor{ID: a.ID.String(), Name: a.Name, Email: a.Email}
}

func (a Actor) displayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Email != "" {
		return a.Email
	}
	return "Someone"
}

// EventPublisher receives events once the originating transaction has committed.
type EventPublisher interface {
	Publish(ev ws.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	if hub, ok := p.(*ws.Hub); ok && hub == nil {
		return noopPublisher{}
	}
	return p
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(validator.Message(errs))
	}
	return nil
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND error and wraps anything else as INTERNAL.
func notFoundOr(err error, notFound, internal string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFound)
	}
	if apperror.As(err) != nil {
		return err
	}
	return apperror.Internal(err, internal)
}

func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
