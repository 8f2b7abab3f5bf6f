package repository

import (
	"context"
	"fmt"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ObjectRepository loads object definitions, resolves their parentPath
// chains and caches the merged result per requested path.
// It is safe for concurrent use.
type ObjectRepository struct {
	store  interfaces.DefinitionStore
	cache  interfaces.ObjectCache
	loads  singleflight.Group
	logger *logrus.Logger
}

// ChangeSource notifies about edited definition files
type ChangeSource interface {
	Run(ctx context.Context, onChange func(files []string)) error
}

// NewObjectRepository - creates a repository over store, caching into cache
func NewObjectRepository(store interfaces.DefinitionStore, cache interfaces.ObjectCache, logger *logrus.Logger) *ObjectRepository {
	return &ObjectRepository{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// GetByPath - returns the fully merged object stored at path
func (r *ObjectRepository) GetByPath(path string) (*entities.UIObject, error) {
	return r.resolve(path, nil)
}

// ClearCache - forgets every merged object so the next lookup reloads it
func (r *ObjectRepository) ClearCache() {
	r.cache.Clear()
	r.logger.Debug("object cache cleared")
}

// Root - returns where the underlying store keeps its definitions
func (r *ObjectRepository) Root() string {
	return r.store.Root()
}

// CachedCount - returns how many merged objects are currently cached
func (r *ObjectRepository) CachedCount() int {
	return r.cache.Len()
}

// List - returns stored paths matching a doublestar pattern ("login/**").
// An empty pattern matches everything.
func (r *ObjectRepository) List(pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	paths, err := r.store.Paths()
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return paths, nil
	}

	matched := make([]string, 0, len(paths))
	for _, p := range paths {
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Watch - clears the cache whenever source reports edited definitions,
// until ctx is done. onReload, if set, runs after each clear.
func (r *ObjectRepository) Watch(ctx context.Context, source ChangeSource, onReload func(files []string)) error {
	return source.Run(ctx, func(files []string) {
		r.logger.WithField("files", len(files)).Info("definitions changed, clearing object cache")
		r.ClearCache()
		if onReload != nil {
			onReload(files)
		}
	})
}

// resolve walks the parentPath chain depth-first. chain holds the paths
// currently being resolved by this call stack.
func (r *ObjectRepository) resolve(path string, chain []string) (*entities.UIObject, error) {
	if obj, ok := r.cache.Get(path); ok {
		return obj, nil
	}

	for _, p := range chain {
		if p == path {
			cycle := append(append([]string(nil), chain...), path)
			return nil, &entities.CyclicInheritanceError{Chain: cycle}
		}
	}

	raw, err := r.loadRaw(path)
	if err != nil {
		return nil, err
	}

	chain = append(append([]string(nil), chain...), path)
	merged, err := r.inherit(raw, chain)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"object":   path,
		"parent":   raw.ParentPath,
		"locators": len(merged.Locators),
	}).Debug("object merged")

	return r.cache.PutIfAbsent(path, &merged), nil
}

// inherit merges obj with its resolved parent and does the same for each
// inline child that declares its own parentPath
func (r *ObjectRepository) inherit(obj *entities.UIObject, chain []string) (entities.UIObject, error) {
	var parent *entities.UIObject
	if obj.ParentPath != "" {
		p, err := r.resolve(obj.ParentPath, chain)
		if err != nil {
			return entities.UIObject{}, fmt.Errorf("resolve parent of %s: %w", obj.Label(), err)
		}
		parent = p
	}

	merged := entities.Merge(obj, parent)

	for i := range merged.Children {
		child, err := r.inherit(&merged.Children[i], chain)
		if err != nil {
			return entities.UIObject{}, fmt.Errorf("child %d of %s: %w", i, obj.Label(), err)
		}
		merged.Children[i] = child
	}

	return merged, nil
}

// loadRaw reads a definition once even when several goroutines miss the
// cache for the same path at the same time
func (r *ObjectRepository) loadRaw(path string) (*entities.UIObject, error) {
	v, err, shared := r.loads.Do(path, func() (interface{}, error) {
		return r.store.Load(path)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.WithField("object", path).Debug("shared concurrent definition load")
	}
	return v.(*entities.UIObject), nil
}
