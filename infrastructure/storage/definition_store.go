package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ui_resolver/domain/entities"
	"ui_resolver/domain/interfaces"
)

const definitionExt = ".json"

type fileDefinitionStore struct {
	root string
}

// NewDefinitionStore - creates a store reading one JSON file per object path
// below root ("login/submit" -> <root>/login/submit.json)
func NewDefinitionStore(root string) interfaces.DefinitionStore {
	return &fileDefinitionStore{root: filepath.Clean(root)}
}

// Root - returns the directory definitions are read from
func (s *fileDefinitionStore) Root() string {
	return s.root
}

// Load - reads and decodes the definition stored at path
func (s *fileDefinitionStore) Load(path string) (*entities.UIObject, error) {
	file, err := s.fileFor(path)
	if err != nil {
		return nil, &entities.ObjectNotFoundError{Path: path, Err: err}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &entities.ObjectNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read definition %s: %w", path, err)
	}

	var obj entities.UIObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &entities.DefinitionParseError{Path: path, Err: err}
	}

	if obj.Path == "" {
		obj.Path = path
	} else if obj.Path != path {
		return nil, &entities.DefinitionParseError{
			Path: path,
			Err:  fmt.Errorf("declared path %q does not match file location", obj.Path),
		}
	}

	if err := obj.Validate(); err != nil {
		return nil, &entities.DefinitionParseError{Path: path, Err: err}
	}

	return &obj, nil
}

// Paths - lists all stored logical paths in lexical order
func (s *fileDefinitionStore) Paths() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(file) != definitionExt {
			return nil
		}
		rel, err := filepath.Rel(s.root, file)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(strings.TrimSuffix(rel, definitionExt)))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list definitions: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// fileFor - maps a logical path to its file, refusing anything that could
// escape the root directory
func (s *fileDefinitionStore) fileFor(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return "", errors.New("path must be relative and slash-delimited")
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("invalid path segment %q", seg)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(path)+definitionExt), nil
}
