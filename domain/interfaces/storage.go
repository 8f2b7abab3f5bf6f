package interfaces

import "ui_resolver/domain/entities"

// DefinitionStore reads raw, unmerged object definitions
type DefinitionStore interface {
	// Load returns the stored definition at path.
	// Fails with ObjectNotFoundError or DefinitionParseError.
	Load(path string) (*entities.UIObject, error)

	// Paths lists every stored logical path
	Paths() ([]string, error)

	// Root is the directory the store reads from
	Root() string
}

// ObjectCache holds merged objects keyed by requested path
type ObjectCache interface {
	Get(path string) (*entities.UIObject, bool)

	// PutIfAbsent stores obj unless path is already present and returns
	// whichever value ends up cached
	PutIfAbsent(path string, obj *entities.UIObject) *entities.UIObject

	Clear()
	Len() int
}
