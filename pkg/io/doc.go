// Package io writes processed documentation back out.
//
// The core packages never touch the file system; this package does:
//
//   - [Rewrite] splices rendered comments into copies of the source files
//   - [Diff] shows the same splice as a unified diff without writing
//   - [WriteResults] emits the processed docs as JSON
//   - [WriteGraph], [ReadGraph] and [ImportGraph] serialize reference graphs
//
// # Splicing
//
// Every documentable carries the byte range of its doc comment in its file
// and the indentation of the comment's first line. Splicing replaces each
// range with the processed doc rendered in the language's comment syntax.
// An empty range marks a declaration without a comment; a rendered doc is
// inserted there, followed by a newline and the declaration's indentation.
// Documentables whose doc did not change keep their original bytes.
//
// # Graph JSON Format
//
//	{
//	  "nodes": [
//	    {"id": "Cart.kt#p.Cart#0", "path": "p.Cart"},
//	    {"id": "Note.kt#p.Note#0", "path": "p.Note"}
//	  ],
//	  "edges": [
//	    {"from": "Cart.kt#p.Cart#0", "to": "Note.kt#p.Note#0"}
//	  ]
//	}
package io
