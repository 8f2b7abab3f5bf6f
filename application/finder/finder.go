package finder

import (
	"context"
	"time"

	"ui_resolver/application/repository"
	"ui_resolver/application/resolver"
	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"
)

// Service resolves repository paths straight to elements.
// Definition errors (not found, cycles, malformed files) are returned before
// any search runs; quiet variants only stay quiet about missing elements.
type Service struct {
	repo   *repository.ObjectRepository
	engine *resolver.Engine
}

// NewService - creates a finder over repo and engine
func NewService(repo *repository.ObjectRepository, engine *resolver.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Object - returns the merged definition at path
func (s *Service) Object(path string) (*entities.UIObject, error) {
	return s.repo.GetByPath(path)
}

// FindOne - quiet immediate single lookup
func (s *Service) FindOne(ctx context.Context, path string, session interfaces.Session) (interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.FindOne(ctx, obj, session), nil
}

// FindAll - quiet immediate lookup of every match
func (s *Service) FindAll(ctx context.Context, path string, session interfaces.Session) ([]interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.FindAll(ctx, obj, session), nil
}

// FindOneStrict - strict immediate single lookup
func (s *Service) FindOneStrict(ctx context.Context, path string, session interfaces.Session) (interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.FindOneStrict(ctx, obj, session)
}

// FindAllStrict - strict immediate lookup of every match
func (s *Service) FindAllStrict(ctx context.Context, path string, session interfaces.Session) ([]interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.FindAllStrict(ctx, obj, session)
}

// WaitOne - quiet polling single lookup
func (s *Service) WaitOne(ctx context.Context, path string, session interfaces.Session, timeout time.Duration) (interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.WaitOne(ctx, obj, session, timeout), nil
}

// WaitAll - quiet polling lookup of every match
func (s *Service) WaitAll(ctx context.Context, path string, session interfaces.Session, timeout time.Duration) ([]interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.WaitAll(ctx, obj, session, timeout), nil
}

// WaitOneStrict - strict polling single lookup
func (s *Service) WaitOneStrict(ctx context.Context, path string, session interfaces.Session, timeout time.Duration) (interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.WaitOneStrict(ctx, obj, session, timeout)
}

// WaitAllStrict - strict polling lookup of every match
func (s *Service) WaitAllStrict(ctx context.Context, path string, session interfaces.Session, timeout time.Duration) ([]interfaces.Element, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.WaitAllStrict(ctx, obj, session, timeout)
}

// Explain - returns the locator attempts of one immediate search for path
func (s *Service) Explain(ctx context.Context, path string, session interfaces.Session) ([]entities.Attempt, error) {
	obj, err := s.repo.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return s.engine.Explain(ctx, obj, session), nil
}
