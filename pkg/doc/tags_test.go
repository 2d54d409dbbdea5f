package doc

import "testing"

func TestTags(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    []Tag
	}{
		{
			name: "param tags",
			content: `
            Some description.
            @param name The name parameter.
            @param age The age parameter.
        `,
			want: []Tag{
				{Name: "param", Subject: "name", Description: "The name parameter."},
				{Name: "param", Subject: "age", Description: "The age parameter."},
			},
		},
		{
			name:    "no subject",
			content: "@return The result.",
			want:    []Tag{{Name: "return", Description: "The result."}},
		},
		{
			name: "mixed",
			content: `
            Main description.
            @param p1 First param.
            @return String result.
            @throws Exception if something goes wrong.
        `,
			want: []Tag{
				{Name: "param", Subject: "p1", Description: "First param."},
				{Name: "return", Description: "String result."},
				{Name: "throws", Subject: "Exception", Description: "if something goes wrong."},
			},
		},
		{
			name: "multi line descriptions",
			content: `
            @param user The user object.
                        It can have multiple lines
                        of description.
            @return A status string.
                    Also with multiple lines.
        `,
			want: []Tag{
				{Name: "param", Subject: "user", Description: "The user object.\nIt can have multiple lines\nof description."},
				{Name: "return", Description: "A status string.\nAlso with multiple lines."},
			},
		},
		{
			name:    "surrounding whitespace",
			content: "@param query  The search query string.  ",
			want:    []Tag{{Name: "param", Subject: "query", Description: "The search query string."}},
		},
		{
			name:    "deprecated",
			content: "@deprecated Use newFunction instead.",
			want:    []Tag{{Name: "deprecated", Description: "Use newFunction instead."}},
		},
		{
			name:    "code fence",
			content: "Example:\n```kotlin\n@Suppress(\"x\")\nfun f() {}\n```\n@return ok",
			want:    []Tag{{Name: "return", Description: "ok"}},
		},
		{name: "no tags", content: "Just a description, no tags."},
		{name: "empty", content: ""},
		{name: "whitespace", content: "\n\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.content.Tags()
			if len(got) != len(tt.want) {
				t.Fatalf("Tags() returned %d tags, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tags()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTagDescriptionIsContent(t *testing.T) {
	c := Content("@sample first\n@param x An x.\n  @see Other")
	tags := c.Tags()
	if len(tags) != 3 {
		t.Fatalf("Tags() returned %d tags, want 3", len(tags))
	}
	if tags[2].Subject != "Other" {
		t.Errorf("Subject = %q, want %q", tags[2].Subject, "Other")
	}
	if inner := tags[1].Description.Tags(); len(inner) != 0 {
		t.Errorf("nested Tags() = %+v, want none", inner)
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		content Content
		want    Content
	}{
		{"Summary.\n\nMore.\n@param x X.", "Summary.\n\nMore."},
		{"No tags here.", "No tags here."},
		{"@return only", ""},
	}

	for _, tt := range tests {
		if got := tt.content.Description(); got != tt.want {
			t.Errorf("Description(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestBlockTagName(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantRest string
		wantOK   bool
	}{
		{"@include [Foo]", "include", " [Foo]", true},
		{"@exportAsHtmlStart", "exportAsHtmlStart", "", true},
		{"@ foo", "", "", false},
		{"@1abc", "", "", false},
		{"text @include", "", "", false},
	}

	for _, tt := range tests {
		name, rest, ok := BlockTagName(tt.line)
		if name != tt.wantName || rest != tt.wantRest || ok != tt.wantOK {
			t.Errorf("BlockTagName(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, name, rest, ok, tt.wantName, tt.wantRest, tt.wantOK)
		}
	}
}
