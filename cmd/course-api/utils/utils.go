package utils

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// WriteJSON writes v as indented json to path, or to stdout when path is empty.
func WriteJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	err = os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0666)
}
