// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package codecs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
)

// NewFormattedJSONEncoder returns a json encoder configured for
// pretty-printed output (human-readable)
func NewFormattedJSONEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	enc.SetEscapeHTML(false)
	return enc
}

// LoadObjectFromFile implements the common pattern for loading an instance
// of an object from a json file.
func LoadObjectFromFile(filename string, object interface{}) (err error) {
	f, err := os.Open(filename)
	if err != nil {
		return
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	err = dec.Decode(object)
	return
}

// SaveObjectToFile implements the common pattern for saving an object to a file as json.
// The file is written next to its destination and renamed into place.
func SaveObjectToFile(filename string, object interface{}, prettyFormat bool) error {
	var buf bytes.Buffer
	var enc *json.Encoder
	if prettyFormat {
		enc = NewFormattedJSONEncoder(&buf)
	} else {
		enc = json.NewEncoder(&buf)
	}
	if err := enc.Encode(object); err != nil {
		return err
	}
	return WriteFileAtomic(filename, buf.Bytes())
}

// SaveNonDefaultValuesToFile saves an object to a file as json, but only fields that are not
// currently set to be the default value.
// Optionally, you can specify an array of field names to always include.
func SaveNonDefaultValuesToFile(filename string, object, defaultObject interface{}, alwaysInclude []string, prettyFormat bool) error {
	values, err := toValueMap(object)
	if err != nil {
		return err
	}
	defaults, err := toValueMap(defaultObject)
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(alwaysInclude))
	for _, name := range alwaysInclude {
		keep[name] = true
	}
	for name, val := range values {
		if keep[name] {
			continue
		}
		if def, ok := defaults[name]; ok && reflect.DeepEqual(val, def) {
			delete(values, name)
		}
	}
	return SaveObjectToFile(filename, values, prettyFormat)
}

// toValueMap flattens the top level of a struct into its json field values.
func toValueMap(object interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(object)
	if err != nil {
		return nil, err
	}
	values := make(map[string]interface{})
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("error processing serialized object - only json objects are supported: %w", err)
	}
	return values, nil
}

// WriteFileAtomic writes data to a temporary file next to filename and renames it into place.
func WriteFileAtomic(filename string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Rename(name, filename)
}
