package timeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a timeline snapshot from a YAML file, as written by the draft
// store. Transition descriptors and transform defaults are normalized here
// so downstream code only ever sees resolved values.
func Load(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes a timeline snapshot from YAML bytes
func Parse(data []byte) (*Timeline, error) {
	var t Timeline
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse timeline snapshot: %w", err)
	}
	if t.Width <= 0 || t.Height <= 0 {
		return nil, fmt.Errorf("timeline snapshot has no canvas size")
	}
	return &t, nil
}

func (c *ClipSettings) UnmarshalYAML(node *yaml.Node) error {
	type plain ClipSettings
	p := plain(DefaultClipSettings())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = ClipSettings(p)
	return nil
}

func (s *Segment) UnmarshalYAML(node *yaml.Node) error {
	type plain Segment
	p := plain{Speed: 1, Clip: DefaultClipSettings()}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Segment(p)
	return nil
}

// rawTransition accepts the loose field spellings different timeline writers
// emit. Name/duration resolution happens once, here.
type rawTransition struct {
	Kind       string   `yaml:"kind"`
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Duration   *float64 `yaml:"duration"`
	DurationUS *float64 `yaml:"duration_us"`
	DurationMS *float64 `yaml:"duration_ms"`
}

func (t *Transition) UnmarshalYAML(node *yaml.Node) error {
	var raw rawTransition
	if err := node.Decode(&raw); err != nil {
		return err
	}

	name := raw.Kind
	if name == "" {
		name = raw.Name
	}
	if name == "" {
		name = raw.Type
	}
	t.Kind = NormalizeTransitionKind(name)
	t.Duration = resolveTransitionDuration(raw)
	return nil
}

// resolveTransitionDuration normalizes the unit by field, falling back to a
// magnitude heuristic for the bare "duration" key: values above 10000 can
// only plausibly be microseconds.
func resolveTransitionDuration(raw rawTransition) time.Duration {
	switch {
	case raw.DurationUS != nil:
		return time.Duration(*raw.DurationUS * float64(time.Microsecond))
	case raw.DurationMS != nil:
		return time.Duration(*raw.DurationMS * float64(time.Millisecond))
	case raw.Duration != nil:
		v := *raw.Duration
		if v > 10000 {
			return time.Duration(v * float64(time.Microsecond))
		}
		return time.Duration(v * float64(time.Second))
	}
	return 0
}
