// Package patch applies RFC 6902 JSON-Patch documents to Go values.
//
// The document is applied to the JSON representation of the value. Object
// keys in paths match case-insensitively, so "/Title" addresses the "title"
// field. Every operation must leave a representation that still decodes into
// the target type; an operation that does not is rejected and reported, and
// the remaining operations are still attempted.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Document is an ordered list of operations. A nil Document is what the JSON
// literal null decodes to.
type Document []Operation

var (
	ErrPathNotFound    = errors.New("path not found")
	ErrInvalidPath     = errors.New("invalid path")
	ErrValueRequired   = errors.New("value is required")
	ErrTestFailed      = errors.New("test failed: current value differs")
	ErrUnsupportedOp   = errors.New("unsupported operation")
	ErrMoveIntoItself  = errors.New("cannot move a value into one of its children")
	errUnknownProperty = errors.New("unknown property")
)

// OperationError describes one rejected operation of a document.
type OperationError struct {
	Index int
	Op    string
	Path  string
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s %s): %v", e.Index, e.Op, e.Path, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Apply runs doc against *target and stores the patched value back into it.
// The returned slice holds one error per rejected operation and is empty when
// every operation applied.
func Apply[T any](doc Document, target *T) []error {
	root, err := toTree(*target)
	if err != nil {
		return []error{fmt.Errorf("failed to encode patch target: %w", err)}
	}

	result := *target
	var errs []error
	for i, op := range doc {
		next, err := applyOperation(clone(root), op)
		var decoded T
		if err == nil {
			decoded, err = decodeInto[T](next)
		}
		if err == nil {
			// Round-trip through T so removed fields come back as zero values.
			next, err = toTree(decoded)
		}
		if err != nil {
			errs = append(errs, &OperationError{Index: i, Op: op.Op, Path: op.Path, Err: err})
			continue
		}
		root, result = next, decoded
	}

	*target = result
	return errs
}

// Messages flattens errors for response bodies.
func Messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func applyOperation(root any, op Operation) (any, error) {
	path, err := parsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(op.Op) {
	case "add":
		value, err := op.value()
		if err != nil {
			return nil, err
		}
		return add(root, path, value)
	case "remove":
		return remove(root, path)
	case "replace":
		value, err := op.value()
		if err != nil {
			return nil, err
		}
		return replace(root, path, value)
	case "test":
		value, err := op.value()
		if err != nil {
			return nil, err
		}
		current, err := get(root, path)
		if err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(current, value) {
			return nil, ErrTestFailed
		}
		return root, nil
	case "copy":
		from, err := parsePointer(op.From)
		if err != nil {
			return nil, err
		}
		value, err := get(root, from)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		return add(root, path, clone(value))
	case "move":
		from, err := parsePointer(op.From)
		if err != nil {
			return nil, err
		}
		if isProperPrefix(from, path) {
			return nil, ErrMoveIntoItself
		}
		value, err := get(root, from)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		if root, err = remove(root, from); err != nil {
			return nil, err
		}
		return add(root, path, value)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedOp, op.Op)
	}
}

func (op Operation) value() (any, error) {
	if len(bytes.TrimSpace(op.Value)) == 0 {
		return nil, ErrValueRequired
	}
	return decodeValue(op.Value)
}

func add(root any, path []string, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	return mutate(root, path, func(container any, token string) (any, error) {
		switch c := container.(type) {
		case map[string]any:
			if key, ok := lookupKey(c, token); ok {
				token = key
			}
			c[token] = value
			return c, nil
		case []any:
			if token == "-" {
				return append(c, value), nil
			}
			idx, err := arrayIndex(token, len(c)+1)
			if err != nil {
				return nil, err
			}
			c = append(c, nil)
			copy(c[idx+1:], c[idx:])
			c[idx] = value
			return c, nil
		default:
			return nil, ErrPathNotFound
		}
	})
}

func remove(root any, path []string) (any, error) {
	if len(path) == 0 {
		return nil, ErrInvalidPath
	}
	return mutate(root, path, func(container any, token string) (any, error) {
		switch c := container.(type) {
		case map[string]any:
			key, ok := lookupKey(c, token)
			if !ok {
				return nil, ErrPathNotFound
			}
			delete(c, key)
			return c, nil
		case []any:
			idx, err := arrayIndex(token, len(c))
			if err != nil {
				return nil, err
			}
			return append(c[:idx], c[idx+1:]...), nil
		default:
			return nil, ErrPathNotFound
		}
	})
}

func replace(root any, path []string, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	return mutate(root, path, func(container any, token string) (any, error) {
		switch c := container.(type) {
		case map[string]any:
			key, ok := lookupKey(c, token)
			if !ok {
				return nil, ErrPathNotFound
			}
			c[key] = value
			return c, nil
		case []any:
			idx, err := arrayIndex(token, len(c))
			if err != nil {
				return nil, err
			}
			c[idx] = value
			return c, nil
		default:
			return nil, ErrPathNotFound
		}
	})
}

func get(node any, path []string) (any, error) {
	for _, token := range path {
		next, _, err := child(node, token)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

// mutate walks to the container addressed by all but the last token and
// hands it to fn. Containers returned by fn are written back up the chain,
// which matters for slices that grow or shrink.
func mutate(node any, path []string, fn func(container any, token string) (any, error)) (any, error) {
	if len(path) == 1 {
		return fn(node, path[0])
	}
	next, key, err := child(node, path[0])
	if err != nil {
		return nil, err
	}
	updated, err := mutate(next, path[1:], fn)
	if err != nil {
		return nil, err
	}
	switch c := node.(type) {
	case map[string]any:
		c[key] = updated
	case []any:
		idx, _ := strconv.Atoi(key)
		c[idx] = updated
	}
	return node, nil
}

func child(node any, token string) (any, string, error) {
	switch c := node.(type) {
	case map[string]any:
		key, ok := lookupKey(c, token)
		if !ok {
			return nil, "", ErrPathNotFound
		}
		return c[key], key, nil
	case []any:
		idx, err := arrayIndex(token, len(c))
		if err != nil {
			return nil, "", err
		}
		return c[idx], strconv.Itoa(idx), nil
	default:
		return nil, "", ErrPathNotFound
	}
}

// lookupKey prefers an exact match and falls back to a case-insensitive one.
func lookupKey(m map[string]any, token string) (string, bool) {
	if _, ok := m[token]; ok {
		return token, true
	}
	for k := range m {
		if strings.EqualFold(k, token) {
			return k, true
		}
	}
	return "", false
}

func arrayIndex(token string, limit int) (int, error) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, fmt.Errorf("%w: bad array index %q", ErrInvalidPath, token)
	}
	idx, err := strconv.Atoi(token)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: bad array index %q", ErrInvalidPath, token)
	}
	if idx >= limit {
		return 0, ErrPathNotFound
	}
	return idx, nil
}

func parsePointer(p string) ([]string, error) {
	if p == "" {
		return nil, nil
	}
	if !strings.HasPrefix(p, "/") {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPath, p)
	}
	tokens := strings.Split(p[1:], "/")
	for i, t := range tokens {
		tokens[i] = strings.ReplaceAll(strings.ReplaceAll(t, "~1", "/"), "~0", "~")
	}
	return tokens, nil
}

func isProperPrefix(prefix, path []string) bool {
	if len(prefix) >= len(path) {
		return false
	}
	for i := range prefix {
		if !strings.EqualFold(prefix[i], path[i]) {
			return false
		}
	}
	return true
}

func toTree(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeValue(raw)
}

func decodeValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeInto reports whether node is still a valid representation of T.
func decodeInto[T any](node any) (T, error) {
	var out T
	raw, err := json.Marshal(node)
	if err != nil {
		return out, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, fmt.Errorf("value for %q must be of type %s", typeErr.Field, typeErr.Type)
		}
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return out, fmt.Errorf("%w: %s", errUnknownProperty, strings.TrimPrefix(err.Error(), "json: unknown field "))
		}
		return out, err
	}
	return out, nil
}

func clone(v any) any {
	switch c := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(c))
		for k, val := range c {
			m[k] = clone(val)
		}
		return m
	case []any:
		s := make([]any, len(c))
		for i, val := range c {
			s[i] = clone(val)
		}
		return s
	default:
		return v
	}
}
