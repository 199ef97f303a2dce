package csvrec

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		opts  Options
		want  []Record
	}{
		{
			name:  "two data rows",
			input: "a,b\n1,2\n3,4",
			want: []Record{
				{{"a", "1"}, {"b", "2"}},
				{{"a", "3"}, {"b", "4"}},
			},
		},
		{
			name:  "trailing newline",
			input: "a,b\n1,2\n",
			want:  []Record{{{"a", "1"}, {"b", "2"}}},
		},
		{
			name:  "crlf and bare cr",
			input: "a,b\r\n1,2\r3,4",
			want: []Record{
				{{"a", "1"}, {"b", "2"}},
				{{"a", "3"}, {"b", "4"}},
			},
		},
		{
			name:  "byte order mark stripped",
			input: "\uFEFFa,b\n1,2",
			want:  []Record{{{"a", "1"}, {"b", "2"}}},
		},
		{
			name:  "quoted delimiter and newline",
			input: "name,note\n\"Doe, J\",\"line1\nline2\"",
			want:  []Record{{{"name", "Doe, J"}, {"note", "line1\nline2"}}},
		},
		{
			name:  "doubled quote escape",
			input: "q\n\"say \"\"hi\"\"\"",
			want:  []Record{{{"q", `say "hi"`}}},
		},
		{
			name:  "ragged long row gets synthesized keys",
			input: "a,b\n1,2,3,4",
			want:  []Record{{{"a", "1"}, {"b", "2"}, {"__col3", "3"}, {"__col4", "4"}}},
		},
		{
			name:  "short row padded with empty strings",
			input: "a,b,c\n1",
			want:  []Record{{{"a", "1"}, {"b", ""}, {"c", ""}}},
		},
		{
			name:  "empty rows skipped by default",
			input: "a,b\n,\n\n1,2",
			want:  []Record{{{"a", "1"}, {"b", "2"}}},
		},
		{
			name:  "empty rows kept",
			input: "a,b\n,\n1,2",
			opts:  Options{KeepEmptyRows: true},
			want: []Record{
				{{"a", ""}, {"b", ""}},
				{{"a", "1"}, {"b", "2"}},
			},
		},
		{
			name:  "trim option",
			input: " a , b \n 1 , 2 ",
			opts:  Options{Trim: true},
			want:  []Record{{{"a", "1"}, {"b", "2"}}},
		},
		{
			name:  "custom delimiter",
			input: "a;b\n1;2,5",
			opts:  Options{Delimiter: ';'},
			want:  []Record{{{"a", "1"}, {"b", "2,5"}}},
		},
		{
			name:  "duplicate header keeps first position",
			input: "a,a,b\n1,2,3",
			want:  []Record{{{"a", "2"}, {"b", "3"}}},
		},
		{
			name:  "header only",
			input: "a,b",
			want:  []Record{},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Parse(tt.input, tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_RecordCountAndHeaderOrder(t *testing.T) {
	t.Parallel()

	input := "z,y,x\n1,2,3\n4,5,6\n7,8,9\n"
	records := Parse(input, Options{})

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, rec := range records {
		if got := rec.Keys(); !reflect.DeepEqual(got, []string{"z", "y", "x"}) {
			t.Errorf("records[%d].Keys() = %v, want [z y x]", i, got)
		}
	}
}

func TestRecordAccessors(t *testing.T) {
	t.Parallel()

	rec := Record{{"a", "1"}, {"b", "2"}}

	if v, ok := rec.Get("b"); !ok || v != "2" {
		t.Errorf("Get(b) = %q, %v, want \"2\", true", v, ok)
	}
	if _, ok := rec.Get("missing"); ok {
		t.Error("Get(missing) reported present")
	}
	if got := rec.Map(); !reflect.DeepEqual(got, map[string]string{"a": "1", "b": "2"}) {
		t.Errorf("Map() = %v", got)
	}
}

func TestRows(t *testing.T) {
	t.Parallel()

	got := Rows("h1,h2\nv1,v2", Options{})
	want := [][]string{{"h1", "h2"}, {"v1", "v2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
}
