package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/textflow/internal/yamlutil"
)

type step struct {
	Name string            `yaml:"name"`
	Args yamlutil.MapSlice `yaml:"args"`
}

type document struct {
	Input    string `yaml:"input"`
	Commands []step `yaml:"commands"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
	}{
		{"valid", []byte("input: hi"), &document{}, nil},
		{"unknown field ignored", []byte("input: hi\nextra: 1"), &document{}, nil},
		{"nil data", nil, &document{}, yamlutil.ErrNilData},
		{"empty data", []byte{}, &document{}, yamlutil.ErrNilData},
		{"nil destination", []byte("input: hi"), nil, yamlutil.ErrNilDestination},
		{"syntax error", []byte("input: [unclosed"), &document{}, errors.New("yamlutil:")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			checkErr(t, err, tt.wantErr)
		})
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"known fields", []byte("input: hi\ncommands: []"), nil},
		{"unknown field rejected", []byte("input: hi\nextra: 1"), errors.New("yamlutil:")},
		{"too large", []byte("input: " + strings.Repeat("x", yamlutil.MaxInputSize)), yamlutil.ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var doc document
			checkErr(t, yamlutil.UnmarshalStrict(tt.data, &doc), tt.wantErr)
		})
	}
}

func TestMapSlice_KeepsOrder(t *testing.T) {
	t.Parallel()

	data := []byte(`
commands:
  - name: make-table
    args:
      col_z: Zed
      col_a: Ay
      col_m: Em
`)
	var doc document
	if err := yamlutil.UnmarshalStrict(data, &doc); err != nil {
		t.Fatalf("UnmarshalStrict() error = %v", err)
	}

	var keys []string
	for _, item := range doc.Commands[0].Args {
		keys = append(keys, item.Key.(string))
	}
	if got, want := strings.Join(keys, ","), "col_z,col_a,col_m"; got != want {
		t.Errorf("keys = %s, want %s", got, want)
	}

	out, err := yamlutil.Marshal(doc.Commands[0].Args)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "col_z: Zed") {
		t.Errorf("Marshal() = %q, want col_z first", out)
	}
}

func TestScalarString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      any
		want    string
		wantErr bool
	}{
		{"s", "s", false},
		{nil, "", false},
		{true, "true", false},
		{42, "42", false},
		{int64(-7), "-7", false},
		{uint64(9), "9", false},
		{1.5, "1.5", false},
		{[]any{1}, "", true},
		{map[string]any{}, "", true},
	}

	for _, tt := range tests {
		got, err := yamlutil.ScalarString(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ScalarString(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ScalarString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func checkErr(t *testing.T, err, want error) {
	t.Helper()
	if want == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !errors.Is(err, want) && !strings.Contains(err.Error(), want.Error()) {
		t.Fatalf("error = %q, want containing %q", err, want)
	}
}
