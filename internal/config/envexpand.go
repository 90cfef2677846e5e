package config

import "os"

// ExpandEnv expands ${VAR}/$VAR references in YAML content before parsing.
// Missing variables expand to the empty string; validation is expected to
// catch required fields left empty by a missing variable.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
