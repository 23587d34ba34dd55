package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
)

func validateOutputFormat(outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case "table":
	case "yaml":
	case "json":
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// writeOutput writes obj to w in the specified format. For the table format,
// addRows fills in a table that already carries the given headers.
func writeOutput(
	w io.Writer,
	outputFormat string,
	obj interface{},
	headers []interface{},
	addRows func(*uitable.Table),
) error {
	switch strings.ToLower(outputFormat) {
	case "table":
		table := uitable.New()
		table.AddRow(headers...)
		addRows(table)
		fmt.Fprintln(w, table)
	case "yaml":
		yamlBytes, err := yaml.Marshal(obj)
		if err != nil {
			return errors.Wrap(err, "error formatting output")
		}
		fmt.Fprintln(w, string(yamlBytes))
	case "json":
		prettyJSON, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return errors.Wrap(err, "error formatting output")
		}
		fmt.Fprintln(w, string(prettyJSON))
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// orDefault returns s, or def if s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
