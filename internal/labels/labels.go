package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	apperrors "agrolens/internal/errors"
)

// Table is the read-only class-index to disease-name mapping produced
// alongside the disease model's training. It is loaded once at startup and
// safe for concurrent reads.
type Table struct {
	names map[string]string
}

// Load reads the class-name table from a JSON file shaped like
// {"0": "Healthy", "1": "Leaf Blight"}. A missing or malformed file is a
// startup precondition failure, not a per-request error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewLabelStoreError(fmt.Sprintf("class names file not found: %s", path), err)
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, apperrors.NewLabelStoreError(fmt.Sprintf("invalid JSON in %s", path), err)
	}
	if len(names) == 0 {
		return nil, apperrors.NewLabelStoreError(fmt.Sprintf("class names file %s has no entries", path), nil)
	}

	return &Table{names: names}, nil
}

// Name resolves a numeric class index to its disease name. A missing index
// means the model output width and the table disagree.
func (t *Table) Name(index int) (string, error) {
	name, ok := t.names[strconv.Itoa(index)]
	if !ok {
		return "", apperrors.NewUnknownClassError(fmt.Sprintf("no class name for index %d", index), nil)
	}
	return name, nil
}

// Len returns the number of classes in the table.
func (t *Table) Len() int {
	return len(t.names)
}
