package backup

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaError reports a backup file that fails structural validation.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("backup: invalid document: %s", e.Reason)
}

// IncompatibleChipError reports a restore attempted across firmware
// generations the image cannot move between.
type IncompatibleChipError struct {
	Backup string
	Device string
}

func (e *IncompatibleChipError) Error() string {
	return fmt.Sprintf("backup: image from %s cannot be restored onto %s", e.Backup, e.Device)
}

const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["metadata", "network", "nvram"],
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["format", "version", "source", "timestamp"],
      "properties": {
        "format": {"type": "string", "const": "znp-coordinator-backup"},
        "version": {"type": "integer", "minimum": 1, "maximum": 1},
        "source": {"type": "string"},
        "timestamp": {"type": "string"}
      }
    },
    "network": {
      "type": "object",
      "required": ["pan_id", "extended_pan_id", "channel", "network_key"],
      "properties": {
        "pan_id": {"type": "integer", "minimum": 0, "maximum": 65534},
        "extended_pan_id": {"type": "string"},
        "channel": {"type": "integer", "minimum": 11, "maximum": 26},
        "channel_mask": {"type": "integer"},
        "nwk_update_id": {"type": "integer", "minimum": 0, "maximum": 255},
        "network_key": {"type": "string", "pattern": "^[0-9a-fA-F]{32}$"},
        "tc_link_key": {"type": "string"},
        "key_sequence": {"type": "integer", "minimum": 0, "maximum": 255},
        "children": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["ieee", "nwk"],
            "properties": {
              "ieee": {"type": "string"},
              "nwk": {"type": "integer", "minimum": 0, "maximum": 65535},
              "link_key": {"type": "string"}
            }
          }
        }
      }
    },
    "nvram": {
      "type": "object",
      "required": ["legacy", "extended"],
      "properties": {
        "legacy": {
          "type": "object",
          "additionalProperties": {"type": "string", "pattern": "^([0-9a-fA-F]{2})*$"}
        },
        "extended": {
          "type": "object",
          "additionalProperties": {"type": "string", "pattern": "^([0-9a-fA-F]{2})*$"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(documentSchema), &doc); err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("backup.schema.json", doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("backup.schema.json")
	})
	return schema, schemaErr
}

// Validate checks raw JSON against the backup document schema.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("backup: schema compile: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &SchemaError{Reason: err.Error()}
	}
	if err := sch.Validate(instance); err != nil {
		return &SchemaError{Reason: err.Error()}
	}
	return nil
}
