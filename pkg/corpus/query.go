package corpus

import "strings"

// Query resolves query relative to from and returns the first documentable
// that passes the view's query filter and filter (which may be nil).
//
// Candidate paths are tried from most to least specific, see
// [Index.AttemptedPaths]. Documentables sharing a path are tried in ID order.
// A nil from resolves query as a fully qualified path.
//
// Results are memoized when filter is nil.
func (ix *Index) Query(from *Documentable, query string, filter Filter) *Documentable {
	if filter != nil {
		return ix.scan(from, query, filter)
	}

	key := memoKey{query: query}
	if from != nil {
		key.from = from.ID
	}
	gen := ix.gen.Load()
	if id, ok := ix.memo.get(gen, key); ok {
		if id == "" {
			return nil
		}
		return ix.docs[id]
	}

	d := ix.scan(from, query, nil)
	id := ""
	if d != nil {
		id = d.ID
	}
	ix.memo.put(gen, key, id)
	return d
}

func (ix *Index) scan(from *Documentable, query string, filter Filter) *Documentable {
	for _, p := range Candidates(from, query) {
		for _, d := range ix.ByPath(p) {
			if filter == nil || filter(d) {
				return d
			}
		}
	}
	return nil
}

// AttemptedPaths returns the candidate paths for query from from, in the
// order [Index.Query] tries them. Error messages list them verbatim.
func (ix *Index) AttemptedPaths(from *Documentable, query string) []string {
	return Candidates(from, query)
}

// ResolvePath returns the first candidate path for query from from that
// holds a documentable accepted by valid. A nil valid accepts any
// documentable the view can see.
func (ix *Index) ResolvePath(from *Documentable, query string, valid func(path string, d *Documentable) bool) (string, bool) {
	for _, p := range Candidates(from, query) {
		for _, d := range ix.ByPath(p) {
			if valid == nil || valid(p, d) {
				return p, true
			}
		}
	}
	return "", false
}

// Candidates lists the full paths query may refer to when written in the
// doc of from, most specific first and without duplicates:
//
//  1. query nested in each enclosing scope of from.Path, innermost first,
//     down to from.Package
//  2. the same for from.ExtensionPath
//  3. query qualified through the imports of from's file, explicit imports
//     before star imports
//  4. query itself
func Candidates(from *Documentable, query string) []string {
	query = strings.TrimPrefix(query, ".")
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	if from != nil {
		for _, scope := range scopes(from.Path, from.Package) {
			add(scope + "." + query)
		}
		if from.ExtensionPath != "" {
			for _, scope := range scopes(from.ExtensionPath, from.Package) {
				add(scope + "." + query)
			}
		}

		first, rest, _ := strings.Cut(query, ".")
		if rest != "" {
			rest = "." + rest
		}
		for _, imp := range from.Imports {
			if !imp.IsStar() && imp.Name() == first {
				add(imp.Path + rest)
			}
		}
		for _, imp := range from.Imports {
			if imp.IsStar() {
				add(strings.TrimSuffix(imp.Path, "*") + query)
			}
		}
	}

	add(query)
	return out
}

// scopes returns path and its prefixes, longest first, stopping at pkg when
// path lies inside it.
func scopes(path, pkg string) []string {
	parts := strings.Split(path, ".")
	minLen := 1
	if pkg != "" && (path == pkg || strings.HasPrefix(path, pkg+".")) {
		minLen = strings.Count(pkg, ".") + 1
	}
	var out []string
	for i := len(parts); i >= minLen; i-- {
		out = append(out, strings.Join(parts[:i], "."))
	}
	return out
}
