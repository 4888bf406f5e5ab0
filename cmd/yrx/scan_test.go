package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"yarax/internal/config"
	"yarax/internal/scanner"
)

func testSession(t *testing.T) {
	t.Helper()
	prev := app
	app = session{cfg: config.Default(), log: zerolog.Nop()}
	t.Cleanup(func() { app = prev })
}

func TestParseDefine(t *testing.T) {
	cases := []struct {
		input string
		name  string
		want  any
	}{
		{"debug=true", "debug", true},
		{"debug=false", "debug", false},
		{"size=42", "size", int64(42)},
		{"mask=0x10", "mask", int64(16)},
		{"ratio=0.5", "ratio", 0.5},
		{"tag=malware", "tag", "malware"},
		{`tag="42"`, "tag", "42"},
		{"empty=", "empty", ""},
		{" spaced =x", "spaced", "x"},
	}
	for _, tc := range cases {
		got, err := parseDefine(tc.input)
		if err != nil {
			t.Fatalf("parseDefine(%q) error: %v", tc.input, err)
		}
		if got.name != tc.name || got.value != tc.want {
			t.Fatalf("parseDefine(%q) = %s=%#v, want %s=%#v", tc.input, got.name, got.value, tc.name, tc.want)
		}
	}

	for _, bad := range []string{"novalue", "=1", ""} {
		if _, err := parseDefine(bad); err == nil {
			t.Fatalf("parseDefine(%q) should fail", bad)
		}
	}
}

func TestCollectTargets(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.bin", "a.bin", filepath.Join("sub", "c.bin")} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := collectTargets(root)
	if err != nil {
		t.Fatalf("collectTargets: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.bin"),
		filepath.Join(root, "b.bin"),
		filepath.Join(root, "sub", "c.bin"),
	}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Fatalf("files = %v, want %v", files, want)
	}

	single, err := collectTargets(want[0])
	if err != nil || len(single) != 1 || single[0] != want[0] {
		t.Fatalf("single file target = %v, %v", single, err)
	}
	if _, err := collectTargets(filepath.Join(root, "missing")); err == nil {
		t.Fatal("missing target should fail")
	}
}

func sampleRule() scanner.MatchingRule {
	return scanner.MatchingRule{
		Name:      "evil",
		Namespace: "default",
		Tags:      []string{"a", "b"},
		Meta:      []scanner.MetaEntry{{Key: "author", Value: "me"}, {Key: "score", Value: int64(7)}},
		Patterns: []scanner.PatternMatches{{
			Ident:   "$s",
			Matches: []scanner.Match{{Offset: 16, Length: 3}},
		}},
	}
}

func TestTextLine(t *testing.T) {
	mr := sampleRule()
	if got := (scanOutput{}).textLine(mr, "f.bin"); got != "evil f.bin" {
		t.Fatalf("plain line = %q", got)
	}
	full := scanOutput{printTags: true, printMeta: true}
	if got, want := full.textLine(mr, "f.bin"), `evil [a,b] [author="me",score=7] f.bin`; got != want {
		t.Fatalf("full line = %q, want %q", got, want)
	}
	mr.Namespace = "extra"
	if got := (scanOutput{}).textLine(mr, "f.bin"); got != "extra:evil f.bin" {
		t.Fatalf("namespaced line = %q", got)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	out := scanOutput{format: "text", printPatterns: true}
	if err := out.write(&buf, []fileResult{{Path: "f.bin", Rules: []scanner.MatchingRule{sampleRule()}}}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "evil f.bin\n0x10:3:$s\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestWriteStructured(t *testing.T) {
	results := []fileResult{{Path: "f.bin", Rules: []scanner.MatchingRule{sampleRule()}}}

	var buf bytes.Buffer
	if err := (scanOutput{format: "json", printTags: true}).write(&buf, results); err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output: %v\n%s", err, buf.String())
	}
	rule := decoded[0]["rules"].([]any)[0].(map[string]any)
	if rule["rule"] != "evil" || rule["tags"] == nil {
		t.Fatalf("json rule = %v", rule)
	}
	if _, ok := rule["meta"]; ok {
		t.Fatal("meta printed without --print-meta")
	}
	if len(results[0].Rules[0].Meta) == 0 {
		t.Fatal("trim modified the input")
	}

	buf.Reset()
	if err := (scanOutput{format: "yaml"}).write(&buf, results); err != nil {
		t.Fatal(err)
	}
	var ydoc []fileResult
	if err := yaml.Unmarshal(buf.Bytes(), &ydoc); err != nil {
		t.Fatalf("yaml output: %v\n%s", err, buf.String())
	}
	if len(ydoc) != 1 || ydoc[0].Path != "f.bin" || ydoc[0].Rules[0].Name != "evil" {
		t.Fatalf("yaml = %+v", ydoc)
	}
}

func TestCompileAndLoadArtifact(t *testing.T) {
	testSession(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "r.yar")
	if err := os.WriteFile(src, []byte(`rule hit { strings: $a = "abc" condition: $a }`), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := &cobra.Command{}

	_, rules, err := compileSources(cmd, []string{src})
	if err != nil {
		t.Fatalf("compileSources: %v", err)
	}
	artifact := filepath.Join(dir, "rules.yrc")
	f, err := os.Create(artifact)
	if err != nil {
		t.Fatal(err)
	}
	if err := rules.Serialize(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	for _, path := range []string{src, artifact} {
		loaded, err := loadRules(cmd, []string{path})
		if err != nil {
			t.Fatalf("loadRules(%s): %v", path, err)
		}
		s, err := newScanner(loaded, nil, 0)
		if err != nil {
			t.Fatal(err)
		}
		res := scanFile(context.Background(), s, src)
		if res.Error != "" || len(res.Rules) != 1 || res.Rules[0].Name != "hit" {
			t.Fatalf("scan with %s = %+v", path, res)
		}
	}
}

func TestCompileSourcesReportsErrors(t *testing.T) {
	testSession(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.yar")
	if err := os.WriteFile(src, []byte(`rule broken { condition: nope }`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := compileSources(&cobra.Command{}, []string{src}); err != errReported {
		t.Fatalf("err = %v, want errReported", err)
	}
}
