package interfaces

import (
	"context"

	"ui_resolver/domain/entities"
)

// SelectorModel asks a language model for a selector matching a description
type SelectorModel interface {
	// SuggestSelector returns the model's raw answer; an empty answer means
	// the model could not propose anything
	SuggestSelector(ctx context.Context, description string, snapshot string) (string, error)
}

// SelfHealer is the last-resort fallback of strict single-element searches
type SelfHealer interface {
	// Heal returns an element or an error wrapping ErrSelfHealingUnavailable
	Heal(ctx context.Context, obj *entities.UIObject, session Session) (Element, error)
}
