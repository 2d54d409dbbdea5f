// Package corpus holds the documentables of a codebase and resolves path
// queries between them.
//
// # Documentables
//
// A [Documentable] is one documented declaration: its stable ID, its
// dot-separated path, the doc as found in the source ([Documentable.SourceDoc])
// and the working copy processors rewrite ([Documentable.Doc]).
//
// # Path Queries
//
// [Index.Query] resolves a path written inside a doc the way the source
// language resolves names: the innermost enclosing scope wins, then the
// receiver of an extension, then the file's imports, and a fully qualified
// path always works. [Index.AttemptedPaths] lists the candidates in that
// order for error messages.
//
// Views created with [Index.WithFilters] hide documentables a processor must
// not see; [Index.Unfiltered] lifts the filters again to tell "excluded"
// apart from "missing".
package corpus
