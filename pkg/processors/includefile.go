package processors

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/processor"
	"github.com/matzehuels/docsmith/pkg/tags"
)

// IncludeFileTag embeds a file relative to the documentable's source file.
const IncludeFileTag = "includeFile"

// IncludeFile returns the processor for "@includeFile (path) extra".
// Contents included into Java docs are escaped.
func IncludeFile() *processor.TagProcessor {
	return processor.NewTagProcessor(processor.TagHandler{
		Name:       IncludeFileTag,
		Tags:       []string{IncludeFileTag},
		ProcessTag: includeFile,
		Completions: []processor.CompletionInfo{{
			Tag:                   IncludeFileTag,
			BlockText:             "@" + IncludeFileTag + " ()",
			PresentableBlockText:  "@" + IncludeFileTag + " (FILE)",
			MoveCaretOffsetBlock:  -1,
			InlineText:            "{@" + IncludeFileTag + " ()}",
			PresentableInlineText: "{@" + IncludeFileTag + " (FILE)}",
			MoveCaretOffsetInline: -2,
			TailText:              "Copy the contents of FILE here. Accepts 1 argument.",
		}},
	})
}

func includeFile(_ context.Context, tc *processor.TagContext, text string) (string, error) {
	args, err := tags.Arguments(text, IncludeFileTag, 2)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", errors.New(errors.ErrCodeParse, "@%s needs a file", IncludeFileTag)
	}
	rel := tags.DecodeFileTarget(args[0])
	d := tc.Doc
	if d.File == "" {
		return "", errors.New(errors.ErrCodeFileNotFound, "File %s cannot be resolved: %s has no source file", rel, d.Path)
	}
	target := filepath.Join(filepath.Dir(tc.Run.Path(d.File)), filepath.FromSlash(rel))
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}

	info, err := os.Stat(target)
	switch {
	case err != nil:
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "File %s (-> %s) does not exist. Called from %s", rel, target, d.Path)
	case info.IsDir():
		return "", errors.New(errors.ErrCodeInvalidPath, "File %s (-> %s) is a directory. Called from %s", rel, target, d.Path)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", target)
	}
	tc.Run.Refs.AddFile(d.ID, target, cache.Hash(data))

	content := doc.Content(data)
	if d.Language == corpus.Java {
		content = doc.EscapeJava(content)
	}
	extra := ""
	if len(args) > 1 {
		extra = args[1]
	}
	return appendExtra(string(content), extra), nil
}
