// Package configutil reads json5 config files. Every file may be paired with a
// <name>.local.<ext> override next to it that is kept out of version control.
package configutil

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the override that sits next to path, asthma.json5 becomes
// asthma.local.json5.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// decodeFile reports whether path exists. A file holding only whitespace counts as
// present and leaves out untouched.
func decodeFile[T any](path string, out *T) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		slog.Debug("config file is empty", "path", path)
		return true, nil
	}
	err = json5.Unmarshal(data, out)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig decodes name and then merges the fields set in its local override on top.
// When neither file exists the error wraps fs.ErrNotExist and names the path.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := decodeFile(name, &out)
	if err != nil {
		return out, err
	}

	local := LocalPath(name)
	var override T
	foundLocal, err := decodeFile(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, fmt.Errorf("merge %s: %w", local, err)
		}
		slog.Info("merging config with local overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, &fs.PathError{Op: "read config", Path: name, Err: fs.ErrNotExist}
	}
	return out, nil
}

// ReadRecursively looks for name in the working directory and then in each parent up
// to the filesystem root, returning the first config that exists.
func ReadRecursively[T any](name string) (T, error) {
	var out T
	current, err := os.Getwd()
	if err != nil {
		return out, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return out, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return out, &fs.PathError{Op: "find config", Path: name, Err: fs.ErrNotExist}
		}
		current = parent
	}
}
