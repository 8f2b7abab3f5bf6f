package entities

import (
	"fmt"
	"strings"
	"time"
)

// PropWaitTimeout is the property key holding an object's own wait timeout.
// The value is either a number of seconds or a duration string ("750ms").
const PropWaitTimeout = "waitTimeout"

// UIObject is the declarative description of one UI control.
// After the repository merges it with its parent chain it is shared between
// goroutines and must be treated as read-only.
type UIObject struct {
	Path             string         `json:"path" yaml:"path"`
	Name             string         `json:"name" yaml:"name"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	Type             string         `json:"type,omitempty" yaml:"type,omitempty"`
	Version          string         `json:"version,omitempty" yaml:"version,omitempty"`
	Author           string         `json:"author,omitempty" yaml:"author,omitempty"`
	LastModified     *time.Time     `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
	ParentPath       string         `json:"parentPath,omitempty" yaml:"parentPath,omitempty"`
	Locators         []Locator      `json:"locators" yaml:"locators"`
	Properties       map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	CustomAttributes map[string]any `json:"customAttributes,omitempty" yaml:"customAttributes,omitempty"`
	Children         []UIObject     `json:"children,omitempty" yaml:"children,omitempty"`
	InShadowRoot     bool           `json:"inShadowRoot,omitempty" yaml:"inShadowRoot,omitempty"`
}

// IsContainer reports whether the object scopes nested child lookups
func (o *UIObject) IsContainer() bool {
	return len(o.Children) > 0
}

// Label is the most human readable identifier available
func (o *UIObject) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Path
}

// WaitTimeout returns the object's own configured wait, if any.
func (o *UIObject) WaitTimeout() (time.Duration, bool) {
	raw, ok := o.Properties[PropWaitTimeout]
	if !ok {
		return 0, false
	}

	var d time.Duration
	switch v := raw.(type) {
	case float64:
		d = time.Duration(v * float64(time.Second))
	case int:
		d = time.Duration(v) * time.Second
	case int64:
		d = time.Duration(v) * time.Second
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		d = parsed
	default:
		return 0, false
	}

	if d <= 0 {
		return 0, false
	}
	return d, true
}

// Validate checks a single stored definition, children included.
func (o *UIObject) Validate() error {
	for i, l := range o.Locators {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("locators[%d]: %w", i, err)
		}
	}
	for i := range o.Children {
		if err := o.Children[i].Validate(); err != nil {
			return fmt.Errorf("children[%d]: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the slices and a shallow copy of the maps
func (o *UIObject) Clone() UIObject {
	c := *o

	if o.Locators != nil {
		c.Locators = make([]Locator, len(o.Locators))
		for i, l := range o.Locators {
			c.Locators[i] = l.Clone()
		}
	}
	c.Properties = copyMap(o.Properties)
	c.CustomAttributes = copyMap(o.CustomAttributes)

	if o.Children != nil {
		c.Children = make([]UIObject, len(o.Children))
		for i := range o.Children {
			c.Children[i] = o.Children[i].Clone()
		}
	}
	if o.LastModified != nil {
		t := *o.LastModified
		c.LastModified = &t
	}

	return c
}

// Merge produces the effective object of child inheriting from parent.
// Neither argument is modified. A nil parent yields a copy of child.
func Merge(child *UIObject, parent *UIObject) UIObject {
	merged := child.Clone()
	if parent == nil {
		return merged
	}

	present := make(map[Strategy]bool, len(merged.Locators))
	for _, l := range merged.Locators {
		present[l.Strategy] = true
	}
	for _, l := range parent.Locators {
		if present[l.Strategy] {
			continue
		}
		merged.Locators = append(merged.Locators, l.Clone())
	}

	merged.Name = firstNonEmpty(merged.Name, parent.Name)
	merged.Description = firstNonEmpty(merged.Description, parent.Description)
	merged.Type = firstNonEmpty(merged.Type, parent.Type)
	merged.Version = firstNonEmpty(merged.Version, parent.Version)
	merged.Author = firstNonEmpty(merged.Author, parent.Author)

	merged.Properties = unionMap(parent.Properties, merged.Properties)
	merged.CustomAttributes = unionMap(parent.CustomAttributes, merged.CustomAttributes)

	merged.InShadowRoot = merged.InShadowRoot || parent.InShadowRoot

	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// unionMap overlays override onto base
func unionMap(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
