package cli

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// readConfigFile decodes a YAML config file, or TOML when the file ends in
// .toml, into a generic map.
func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	return raw, nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	raw, err := readConfigFile(path)
	if err != nil {
		return err
	}

	strs := map[string]*string{
		"source":         &cfg.Source,
		"flagversion":    &cfg.FlagVersion,
		"modulename":     &cfg.ModuleName,
		"classname":      &cfg.ClassName,
		"destination":    &cfg.Destination,
		"packagename":    &cfg.PackageName,
		"packageversion": &cfg.PackageVersion,
		"repopath":       &cfg.RepoPath,
		"tagcommand":     &cfg.TagCommand,
		"docpath":        &cfg.DocPath,
		"modelpath":      &cfg.ModelPath,
		"format":         &cfg.Format,
	}
	bools := map[string]*bool{
		"noenumdescription": &cfg.NoEnumDescription,
		"globalsecurity":    &cfg.GlobalSecurity,
		"dryrun":            &cfg.DryRun,
		"force":             &cfg.Force,
		"verbose":           &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	case float64:
		// Unquoted versions such as 2.0 keep their decimal point.
		if val == math.Trunc(val) {
			return strconv.FormatFloat(val, 'f', 1, 64), nil
		}
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int, int64:
		return fmt.Sprint(val), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
