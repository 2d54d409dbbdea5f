package processors

import (
	"context"

	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/processor"
)

// RemoveEscapeCharsName names the processor that drops escape characters.
const RemoveEscapeCharsName = "removeEscapeChars"

// RemoveEscapeChars returns the processor removing the backslash of "\[",
// "\]", "\{", "\}" and "\@" outside code spans. It belongs at the end of a
// pipeline since earlier processors rely on the escapes.
func RemoveEscapeChars() processor.Processor { return removeEscapeChars{} }

type removeEscapeChars struct{}

func (removeEscapeChars) Name() string { return RemoveEscapeCharsName }

func (removeEscapeChars) Process(ctx context.Context, run *processor.Run) error {
	for _, d := range run.Index.ToProcess(run.Selected) {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.Doc = doc.RemoveEscapeChars(d.Doc)
	}
	return nil
}
