package insight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"sliceinsight/domain/core"
)

// Catalog is the read-only, insertion-ordered collection of slice statistics
// for one metric, keyed by canonical key.
type Catalog struct {
	entries map[string]DimensionSliceInfo
	order   []string
}

// NewCatalog builds a catalog from infos, keyed by their serialized key.
func NewCatalog(infos ...DimensionSliceInfo) (*Catalog, error) {
	c := &Catalog{}
	for _, info := range infos {
		key := info.SerializedKey
		if key == "" {
			key = info.Key.Canonical()
		}
		if err := c.Add(key, info); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends one slice. The key's components must match the slice's pairs
// and a slice may not constrain the same dimension twice.
func (c *Catalog) Add(key string, info DimensionSliceInfo) error {
	if key == "" {
		return core.NewInvalidSliceError(key, "empty key")
	}
	if _, exists := c.entries[key]; exists {
		return core.NewInvalidSliceError(key, "duplicate key")
	}
	if len(info.Key) == 0 {
		parsed, err := ParseSliceKey(key)
		if err != nil {
			return err
		}
		info.Key = parsed
	}
	if dim, dup := info.Key.duplicateDimension(); dup {
		return core.NewInvalidSliceError(key, fmt.Sprintf("dimension %q repeated", dim))
	}
	components := SplitKey(key)
	if len(components) != len(info.Key) || !ContainsAll(components, info.Key.Components()) {
		return core.NewInvalidSliceError(key, "key does not match slice pairs "+info.Key.Canonical())
	}
	info.SerializedKey = key

	if c.entries == nil {
		c.entries = make(map[string]DimensionSliceInfo)
	}
	c.entries[key] = info
	c.order = append(c.order, key)
	return nil
}

// Get returns the slice stored under key.
func (c *Catalog) Get(key string) (DimensionSliceInfo, bool) {
	info, ok := c.entries[key]
	return info, ok
}

// Lookup is Get that reports a missing key as a data-integrity fault.
func (c *Catalog) Lookup(key string) (DimensionSliceInfo, error) {
	info, ok := c.entries[key]
	if !ok {
		return DimensionSliceInfo{}, core.NewSliceNotFoundError(key)
	}
	return info, nil
}

// Len returns the number of slices.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Keys returns the canonical keys in insertion order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Entries returns the slices in insertion order.
func (c *Catalog) Entries() []DimensionSliceInfo {
	entries := make([]DimensionSliceInfo, len(c.order))
	for i, key := range c.order {
		entries[i] = c.entries[key]
	}
	return entries
}

// UnmarshalJSON decodes a JSON object while keeping its key order.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	*c = Catalog{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read slice catalog: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("slice catalog must be a JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read slice key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected slice key token %v", tok)
		}
		var info DimensionSliceInfo
		if err := dec.Decode(&info); err != nil {
			return fmt.Errorf("failed to decode slice %q: %w", key, err)
		}
		if err := c.Add(key, info); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to close slice catalog: %w", err)
	}
	return nil
}

// MarshalJSON encodes the catalog as a JSON object in insertion order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseSliceKey rebuilds pairs from a canonical key. Values come back as strings.
func ParseSliceKey(key string) (SliceKey, error) {
	components := SplitKey(key)
	if len(components) == 0 {
		return nil, core.NewInvalidSliceError(key, "no components")
	}
	pairs := make(SliceKey, len(components))
	for i, component := range components {
		dim, value, ok := strings.Cut(component, PairSeparator)
		if !ok || dim == "" {
			return nil, core.NewInvalidSliceError(key, fmt.Sprintf("component %q is not dimension:value", component))
		}
		pairs[i] = DimensionValuePair{Dimension: dim, Value: value}
	}
	return pairs, nil
}
