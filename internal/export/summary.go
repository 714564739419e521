package export

import (
	"bufio"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nameplate-cli/internal/model"
)

// WriteSummaries writes each run as a bracketed source line followed by its
// summary, with a blank line between runs. Failed runs show their error.
func WriteSummaries(w io.Writer, runs []model.Run) error {
	bw := bufio.NewWriter(w)
	for i, r := range runs {
		if i > 0 {
			bw.WriteString("\n") //nolint:errcheck
		}
		bw.WriteString("[" + r.Source + "]\n") //nolint:errcheck
		switch {
		case r.Result != nil:
			bw.WriteString(r.Result.Summary() + "\n") //nolint:errcheck
		case r.Error != "":
			bw.WriteString("error: " + r.Error + "\n") //nolint:errcheck
		default:
			bw.WriteString("status: " + string(r.Status) + "\n") //nolint:errcheck
		}
	}
	return eris.Wrap(bw.Flush(), "export: write summaries")
}
