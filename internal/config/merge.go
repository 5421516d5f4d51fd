package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyInstance = "instance"
	keyPaging   = "paging"
	keyCache    = "cache"
	keyOutput   = "output"
	keyLogging  = "logging"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyInstance: true,
	keyPaging:   true,
	keyCache:    true,
	keyOutput:   true,
	keyLogging:  true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Fields present in an overlay section replace the
// target's; sections and fields absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	// Discover which top-level keys are present in the overlay.
	var overlay map[string]interface{}
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		// Re-marshal the single section so we can unmarshal it onto the
		// strongly-typed target field.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes raw YAML bytes onto the field of target named by
// key. Sections hold no maps, so decoding onto a copy of the current value
// keeps defaults for omitted fields.
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keyInstance:
		return mergeSection(&target.Instance, data)
	case keyPaging:
		return mergeSection(&target.Paging, data)
	case keyCache:
		return mergeSection(&target.Cache, data)
	case keyOutput:
		return mergeSection(&target.Output, data)
	case keyLogging:
		return mergeSection(&target.Logging, data)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

func mergeSection[T any](field *T, data []byte) error {
	v := *field
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	*field = v
	return nil
}
