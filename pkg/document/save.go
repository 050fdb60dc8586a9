package document

import (
	"context"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
)

// Saver persists a document. Implementations may set d.ID and d.UpdatedAt.
type Saver interface {
	Save(ctx context.Context, d *Document) error
}

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows a one-line message to the operator.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(level Level, message string)

// Notify implements [Notifier].
func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// Discard is a Notifier that drops every message.
var Discard Notifier = NotifierFunc(func(Level, string) {})

// Save builds a document from meta and g and hands it to saver as a single
// request. Validation and save failures are reported to notifier once and
// returned; nothing is retried. On a validation failure saver is not called
// and no document is returned.
func Save(ctx context.Context, meta Meta, g *flow.Graph, saver Saver, notifier Notifier) (*Document, error) {
	if notifier == nil {
		notifier = Discard
	}

	d, err := Build(meta, g)
	if err != nil {
		notifier.Notify(LevelError, errs.UserMessage(err))
		return nil, err
	}

	if err := saver.Save(ctx, d); err != nil {
		notifier.Notify(LevelError, "Failed to save flow: "+errs.UserMessage(err))
		return nil, err
	}

	notifier.Notify(LevelSuccess, "Flow saved successfully")
	return d, nil
}
