package registry

import (
	"context"
	"time"

	"github.com/asaidimu/go-fieldset/core/field"
)

// FieldEventType defines the events the registry emits on mutation.
type FieldEventType string

const (
	FieldAddSuccess    FieldEventType = "field:add:success"
	FieldAddFailed     FieldEventType = "field:add:failed"
	FieldRemoveSuccess FieldEventType = "field:remove:success"
	FieldRemoveFailed  FieldEventType = "field:remove:failed"
	SelectionToggled   FieldEventType = "selection:toggle"
)

// FieldEvent is the payload delivered to registry subscribers.
type FieldEvent struct {
	Type      FieldEventType `json:"type"`
	Timestamp int64          `json:"timestamp"` // Unix milliseconds
	Key       string         `json:"key"`
	// Definition carries the affected definition on successful add/remove.
	Definition *field.Definition `json:"definition,omitempty"`
	// Selected carries the new selection state for selection:toggle events.
	Selected *bool   `json:"selected,omitempty"`
	Error    *string `json:"error,omitempty"`
}

// CallbackFunction handles a registry event.
type CallbackFunction func(ctx context.Context, event FieldEvent) error

// RegisterSubscriptionOptions configures a registry subscription.
type RegisterSubscriptionOptions struct {
	Event       FieldEventType `json:"event"`
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Callback    CallbackFunction
}

// SubscriptionInfo describes a registered subscription.
type SubscriptionInfo struct {
	Event       FieldEventType `json:"event"`
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Unsubscribe func()
}

func createEvent(eventType FieldEventType, key string, def *field.Definition, selected *bool, errMsg *string) FieldEvent {
	return FieldEvent{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Key:        key,
		Definition: def,
		Selected:   selected,
		Error:      errMsg,
	}
}
