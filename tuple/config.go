/**
 * Copyright 2024 MaxPoint Interactive, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tuple

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Well-known job configuration keys read by the format registry
const (
	InputFormatKey    = "mapred.input.format.class"
	OutputFormatKey   = "mapred.output.format.class"
	OutputKeyClassKey = "mapred.output.key.class"
	OutputCompressKey = "mapred.output.compress"
	SerializationsKey = "io.serializations"
	InputPathKey      = "mapred.input.dir"
	OutputPathKey     = "mapred.output.dir"
)

// JobConf is the configuration bag handed to schemes and formats.
// Values are kept as strings; typed accessors convert on access.
type JobConf map[string]string

// NewJobConf returns an empty JobConf
func NewJobConf() JobConf {
	return make(JobConf)
}

// SetBool sets configuration property key to the bool value.
func (m JobConf) SetBool(key string, value bool) {
	m[key] = strconv.FormatBool(value)
}

// SetInt sets configuration property key to the int value.
func (m JobConf) SetInt(key string, value int) {
	m[key] = strconv.FormatInt(int64(value), 10)
}

// SetString sets configuration property key to the string value.
func (m JobConf) SetString(key string, value string) {
	m[key] = value
}

// SetStrings stores values as a comma separated list
func (m JobConf) SetStrings(key string, values ...string) {
	m[key] = strings.Join(values, ",")
}

// GetBool finds the given key in the JobConf and returns its bool value.
// If the key is not found `defval` is returned.
func (m JobConf) GetBool(key string, defval bool) (bool, error) {
	v, ok := m[key]
	if !ok {
		return defval, nil
	}
	return strconv.ParseBool(v)
}

// GetInt finds the given key in the JobConf and returns its int value.
// If the key is not found `defval` is returned.
func (m JobConf) GetInt(key string, defval int) (int, error) {
	v, ok := m[key]
	if !ok {
		return defval, nil
	}
	ret, err := strconv.ParseInt(v, 10, 0)
	if err != nil {
		return 0, err
	}
	return int(ret), nil
}

// GetString finds the given key in the JobConf and returns its string value.
// If the key is not found `defval` is returned.
func (m JobConf) GetString(key string, defval string) string {
	v, ok := m[key]
	if !ok {
		return defval
	}
	return v
}

// GetStrings returns the comma separated list stored under key, or nil.
func (m JobConf) GetStrings(key string) []string {
	v, ok := m[key]
	if !ok || v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// AppendString adds value to the comma separated list under key unless it
// is already present. It reports whether the list changed.
func (m JobConf) AppendString(key string, value string) bool {
	values := m.GetStrings(key)
	for _, v := range values {
		if v == value {
			return false
		}
	}
	m.SetStrings(key, append(values, value)...)
	return true
}

// Clone returns a copy of the JobConf
func (m JobConf) Clone() JobConf {
	m2 := make(JobConf, len(m))
	for k, v := range m {
		m2[k] = v
	}
	return m2
}

// Set implements flag.Value (command line argument parser) as a convenience
// for `-X key=value` config.
func (m JobConf) Set(kv string) error {
	i := strings.Index(kv, "=")
	if i == -1 {
		return errors.New("expected key=value")
	}
	m[kv[:i]] = kv[i+1:]
	return nil
}

func (m JobConf) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m[k])
	}
	return b.String()
}
