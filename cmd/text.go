package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nameplate-cli/internal/model"
	"github.com/sells-group/nameplate-cli/internal/ocr"
)

var (
	textFile string
	textJSON bool
	textSave bool
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Extract fields from text that was already recognized",
	Long:  "Reads OCR output from stdin (or --file) and prints the extracted fields. No OCR is performed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		source, raw, err := readTextInput(cmd.InOrStdin(), textFile)
		if err != nil {
			return err
		}

		env, err := initService(ctx, "text", textSave)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Service.ProcessText(ctx, source, raw)
		if err != nil {
			return err
		}
		return printExtraction(cmd.OutOrStdout(), run, textJSON)
	},
}

func init() {
	textCmd.Flags().StringVar(&textFile, "file", "", "read text from this file instead of stdin")
	textCmd.Flags().BoolVar(&textJSON, "json", false, "print fields and summary as JSON")
	textCmd.Flags().BoolVar(&textSave, "save", false, "persist the run to the configured store")
	rootCmd.AddCommand(textCmd)
}

// readTextInput returns the run source label and decoded text from path, or
// from stdin when path is empty.
func readTextInput(stdin io.Reader, path string) (string, string, error) {
	if path == "" {
		raw, err := ocr.DecodeText(stdin)
		if err != nil {
			return "", "", eris.Wrap(err, "text: read stdin")
		}
		return "stdin", raw, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", eris.Wrapf(err, "text: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	raw, err := ocr.DecodeText(f)
	if err != nil {
		return "", "", eris.Wrapf(err, "text: read %s", path)
	}
	return path, raw, nil
}

// extractionResponse is the JSON shape of a single extraction.
type extractionResponse struct {
	RunID   string              `json:"run_id,omitempty"`
	Fields  []model.FieldResult `json:"fields"`
	Summary string              `json:"summary"`
}

func newExtractionResponse(run *model.Run) extractionResponse {
	resp := extractionResponse{RunID: run.ID, Fields: []model.FieldResult{}}
	if run.Result != nil {
		if run.Result.Fields != nil {
			resp.Fields = run.Result.Fields
		}
		resp.Summary = run.Result.Summary()
	}
	return resp
}

// printExtraction writes the summary text, or the extraction as JSON.
func printExtraction(w io.Writer, run *model.Run, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newExtractionResponse(run))
	}
	_, err := fmt.Fprintln(w, run.Summary())
	return err
}
