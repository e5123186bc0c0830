package elasticsearch

import (
	"fmt"
)

// ModeConfig selects how documents are indexed.
type ModeConfig struct {
	// Kind is "bulk" (default) or "data_stream".
	Kind       string           `koanf:"kind"`
	Bulk       BulkModeConfig   `koanf:"bulk"`
	DataStream DataStreamConfig `koanf:"data_stream"`
}

// BulkModeConfig configures plain bulk indexing.
type BulkModeConfig struct {
	// Action is "index" (default) or "create".
	Action string `koanf:"action"`
	Index  string `koanf:"index"`
}

// DataStreamConfig configures indexing into a data stream, named by the
// type-dataset-namespace convention.
type DataStreamConfig struct {
	Type      string `koanf:"type"`
	Dataset   string `koanf:"dataset"`
	Namespace string `koanf:"namespace"`
}

// Mode is the resolved ingest mode of a descriptor.
type Mode struct {
	action string
	index  string
}

// Action is the bulk action verb of every document, "index" or "create".
func (m Mode) Action() string { return m.action }

// Index is the index or data stream name documents are written to.
func (m Mode) Index() string { return m.index }

func resolveMode(cfg ModeConfig) (Mode, error) {
	switch cfg.Kind {
	case "", "bulk":
		action := cfg.Bulk.Action
		if action == "" {
			action = "index"
		}
		if action != "index" && action != "create" {
			return Mode{}, fmt.Errorf(`unknown bulk action %q, expected "index" or "create"`, action)
		}
		index := cfg.Bulk.Index
		if index == "" {
			index = "logship"
		}
		return Mode{action: action, index: index}, nil

	case "data_stream":
		dsType := cfg.DataStream.Type
		if dsType == "" {
			dsType = "logs"
		}
		dataset := cfg.DataStream.Dataset
		if dataset == "" {
			dataset = "generic"
		}
		namespace := cfg.DataStream.Namespace
		if namespace == "" {
			namespace = "default"
		}
		// Data streams only accept the create action.
		return Mode{
			action: "create",
			index:  fmt.Sprintf("%s-%s-%s", dsType, dataset, namespace),
		}, nil

	default:
		return Mode{}, fmt.Errorf(`unknown mode %q, expected "bulk" or "data_stream"`, cfg.Kind)
	}
}
