package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/nameplate-cli/internal/fields"
	"github.com/sells-group/nameplate-cli/internal/model"
)

var fieldsJSON bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the active field configuration",
	Long:  "Prints the fields and label patterns the extractor matches, in the YAML layout accepted by fields.path.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := initFields()
		if err != nil {
			return err
		}
		return writeFields(cmd.OutOrStdout(), reg, fieldsJSON)
	},
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(fieldsCmd)
}

func writeFields(w io.Writer, reg *model.FieldRegistry, asJSON bool) error {
	file := fields.File{Fields: reg.Specs()}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(file)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return err
	}
	return enc.Close()
}
