package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileSet is the object form of a task file.
type fileSet struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// LoadFile reads tasks from a JSON or YAML file. The format follows the
// extension, .json or .yaml/.yml. The file holds either a list of tasks or
// an object with a "tasks" list.
func LoadFile(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("tasks file %s: unsupported extension, use .json, .yaml or .yml", path)
	}
}

// DecodeJSON decodes a JSON task list or task set object.
func DecodeJSON(data []byte) ([]Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var set fileSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		return set.Tasks, nil
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	return tasks, nil
}

// DecodeYAML decodes a YAML task list or task set mapping.
func DecodeYAML(data []byte) ([]Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		var set fileSet
		if err := root.Decode(&set); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		return set.Tasks, nil
	}
	var tasks []Task
	if err := root.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	return tasks, nil
}

// Import stores tasks taken from a file. Ids in the file are local to it:
// dependencies that point at another imported task are rewritten to the id
// it receives in storage, all others are kept as given.
func Import(ctx context.Context, repo Repository, tasks []Task) ([]Task, error) {
	stripped := make([]Task, len(tasks))
	for i, t := range tasks {
		cp := t.Clone()
		cp.Dependencies = nil
		stripped[i] = cp
	}
	created, err := repo.CreateMany(ctx, stripped)
	if err != nil {
		return nil, err
	}

	mapping := make(map[ID]ID, len(tasks))
	for i, t := range tasks {
		if t.ID.IsZero() {
			continue
		}
		if _, dup := mapping[t.ID]; !dup {
			mapping[t.ID] = created[i].ID
		}
	}
	for i, t := range tasks {
		deps := dedupe(t.Dependencies)
		if len(deps) == 0 {
			continue
		}
		for j, d := range deps {
			if mapped, ok := mapping[d]; ok {
				deps[j] = mapped
			}
		}
		updated, err := repo.Update(ctx, created[i].ID, Patch{Dependencies: &deps})
		if err != nil {
			return nil, fmt.Errorf("link dependencies of %s: %w", created[i].ID, err)
		}
		created[i] = updated
	}
	return created, nil
}
