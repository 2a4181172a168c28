package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/maskserve/maskserve/internal/gperr"
	"gopkg.in/yaml.v3"
)

var ErrEmptyDocument = gperr.New("empty document")

// DeserializeYAML decodes data into target, rejecting fields
// the target does not declare, then validates it by its field tags.
//
// JSON documents are accepted since YAML is a superset of JSON.
func DeserializeYAML[T any](data []byte, target *T) gperr.Error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyDocument
		}
		return gperr.Wrap(err)
	}
	return ValidateWithFieldTags(target)
}

func LoadJSON[T any](path string, dst *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// SaveJSON writes src as indented JSON to a temporary file
// next to path, then renames it into place.
func SaveJSON[T any](path string, src *T, perm os.FileMode) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, perm)
}

// WriteFileAtomic replaces path with data by way of a temporary file,
// so readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
