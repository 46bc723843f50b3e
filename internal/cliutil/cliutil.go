// Package cliutil provides the output-formatting and ad-hoc feature
// discovery helpers shared by the konditional command-line tool: the same
// table/JSON/YAML rendering split the reference CLI uses for its own
// flag-management commands. It holds no configuration-file handling.
package cliutil

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/konditional/konditional/internal/evalcore"
	"github.com/konditional/konditional/internal/feature"
)

// Format selects how a command renders its result to stdout.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Print renders data in the requested format. Table output is only
// meaningful for []FlagRow; JSON and YAML accept anything.
func Print(data any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(data)
	case FormatTable, "":
		rows, ok := data.([]FlagRow)
		if !ok {
			return fmt.Errorf("cliutil: table format is only supported for flag listings")
		}
		return printTable(rows)
	default:
		return fmt.Errorf("cliutil: unsupported format %q", format)
	}
}

// FlagRow is the flattened shape the table renderer understands.
type FlagRow struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Type       string `json:"type" yaml:"type"`
	Active     bool   `json:"active" yaml:"active"`
	Rules      int    `json:"rules" yaml:"rules"`
	Default    any    `json:"default" yaml:"default"`
}

func printTable(rows []FlagRow) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Feature", "Type", "Active", "Rules", "Default")
	for _, row := range rows {
		table.Append(
			row.Identifier,
			row.Type,
			fmt.Sprintf("%t", row.Active),
			fmt.Sprintf("%d", row.Rules),
			fmt.Sprintf("%v", row.Default),
		)
	}
	return table.Render()
}

// FlagRows flattens a Configuration into the rows the table/JSON/YAML
// renderers consume.
func FlagRows(config evalcore.Configuration, resolver *feature.Resolver) []FlagRow {
	ids := config.Identifiers()
	rows := make([]FlagRow, 0, len(ids))
	for _, id := range ids {
		fd, _ := config.Lookup(id)
		typeName := "unknown"
		if feat, ok := resolver.Resolve(id); ok {
			typeName = feat.Type.String()
		}
		rows = append(rows, FlagRow{
			Identifier: id,
			Type:       typeName,
			Active:     fd.IsActive,
			Rules:      len(fd.Rules),
			Default:    fd.Default.Raw(),
		})
	}
	return rows
}

// rawSnapshot mirrors just enough of the wire snapshot shape to discover
// each flag's key and declared value type without importing the unexported
// codec wire types.
type rawSnapshot struct {
	Flags []struct {
		Key          string `json:"key"`
		DefaultValue struct {
			Type string `json:"type"`
		} `json:"defaultValue"`
	} `json:"flags"`
}

// DiscoverResolver builds a feature.Resolver by reading each flag's key and
// declared type straight out of a snapshot document, instead of requiring
// an operator to separately declare every feature before the CLI can
// decode their file. This mirrors how the reference CLI's store treats
// flags as freely declared records rather than values an application must
// register in advance; konditional's core keeps startup registration for
// in-process callers; the CLI alone opts into on-the-fly discovery so it
// can operate on any snapshot file handed to it.
func DiscoverResolver(data []byte) (*feature.Resolver, error) {
	var snap rawSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("cliutil: parse snapshot for discovery: %w", err)
	}

	resolver := feature.NewResolver()
	seen := map[string]bool{}
	for _, f := range snap.Flags {
		if f.Key == "" {
			continue
		}
		canonical := feature.CanonicalIdentifier(f.Key)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		valueType, ok := feature.ParseValueType(f.DefaultValue.Type)
		if !ok {
			return nil, fmt.Errorf("cliutil: flag %q has unrecognized type %q", f.Key, f.DefaultValue.Type)
		}
		ns, key, err := feature.ParseIdentifier(canonical)
		if err != nil {
			return nil, fmt.Errorf("cliutil: flag %q: %w", f.Key, err)
		}
		resolver.Register(feature.Feature{
			Identifier: canonical,
			Key:        key,
			NamespaceID: ns,
			Type:       valueType,
		})
	}
	return resolver, nil
}
