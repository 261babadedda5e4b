package orchestrator

import (
	"bytes"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Answer is a resolved value and whether it came from the default.
type Answer struct {
	Value     any  `json:"value" yaml:"value"`
	IsDefault bool `json:"isDefault" yaml:"isDefault"`
}

// Result holds the answers of one batch in schema order.
type Result struct {
	names   []string
	answers map[string]Answer
}

func newResult(size int) Result {
	return Result{
		names:   make([]string, 0, size),
		answers: make(map[string]Answer, size),
	}
}

func (r *Result) add(name string, answer Answer) {
	if _, exists := r.answers[name]; !exists {
		r.names = append(r.names, name)
	}
	r.answers[name] = answer
}

// Keys returns the field names in schema order.
func (r Result) Keys() []string {
	return append([]string(nil), r.names...)
}

// Len reports the number of answers.
func (r Result) Len() int {
	return len(r.names)
}

// Get returns the value resolved for name.
func (r Result) Get(name string) (any, bool) {
	answer, ok := r.answers[name]
	return answer.Value, ok
}

// Answer returns the full answer for name.
func (r Result) Answer(name string) (Answer, bool) {
	answer, ok := r.answers[name]
	return answer, ok
}

// Values maps field names to resolved values.
func (r Result) Values() map[string]any {
	out := make(map[string]any, len(r.answers))
	for name, answer := range r.answers {
		out[name] = answer.Value
	}
	return out
}

// Answers maps field names to their answers.
func (r Result) Answers() map[string]Answer {
	out := make(map[string]Answer, len(r.answers))
	for name, answer := range r.answers {
		out[name] = answer
	}
	return out
}

// Detailed returns a view whose encodings carry {value, isDefault} per field.
func (r Result) Detailed() DetailedResult {
	return DetailedResult{result: r}
}

// MarshalJSON encodes the values as an object in schema order.
func (r Result) MarshalJSON() ([]byte, error) {
	return r.orderedJSON(func(a Answer) any { return a.Value })
}

// MarshalYAML encodes the values as a mapping in schema order.
func (r Result) MarshalYAML() (any, error) {
	return r.orderedYAML(func(a Answer) any { return a.Value })
}

// DetailedResult encodes every answer with its default flag.
type DetailedResult struct {
	result Result
}

// MarshalJSON implements json.Marshaler.
func (d DetailedResult) MarshalJSON() ([]byte, error) {
	return d.result.orderedJSON(func(a Answer) any { return a })
}

// MarshalYAML implements yaml.Marshaler.
func (d DetailedResult) MarshalYAML() (any, error) {
	return d.result.orderedYAML(func(a Answer) any { return a })
}

func (r Result) orderedJSON(pick func(Answer) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(pick(r.answers[name]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Result) orderedYAML(pick func(Answer) any) (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range r.names {
		value := &yaml.Node{}
		if err := value.Encode(pick(r.answers[name])); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			value,
		)
	}
	return node, nil
}
