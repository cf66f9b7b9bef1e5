// Package yaml reads command-line defaults from YAML configuration files.
package yaml

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagegrab"
	"gopkg.in/yaml.v3"
)

// Loader is a kong.ConfigurationLoader for YAML files.
//
// Keys match long flag names, either as written ("svg-dir") or in snake
// case ("svg_dir"). A top-level mapping named after the application holds
// values that apply only to that binary and take precedence:
//
//	rate: 2
//	fetchimages:
//	  db: ~/.local/share/pagegrab/ledger.db
func Loader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, pagegrab.WrapError(pagegrab.EINVALID, err, "parsing config")
	}

	return kong.ResolverFunc(func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if section, ok := values[kctx.Model.Name].(map[string]any); ok {
			if v, ok := lookup(section, flag.Name); ok {
				return v, nil
			}
		}
		if v, ok := lookup(values, flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}), nil
}

func lookup(values map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		raw, ok := values[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case nil, map[string]any:
			return nil, false
		case []any:
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = fmt.Sprint(item)
			}
			return strings.Join(parts, ","), true
		default:
			return fmt.Sprint(v), true
		}
	}
	return nil, false
}
