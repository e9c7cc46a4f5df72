package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"png"}},
		{"svg", []string{"svg"}},
		{"png, SVG,dot", []string{"png", "svg", "dot"}},
		{"topology,", []string{"topology"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := validateFormats([]string{"png", "svg", "dot", "topology"}); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	for _, bad := range [][]string{nil, {"pdf"}, {"png", "json"}} {
		if err := validateFormats(bad); err == nil {
			t.Errorf("validateFormats(%v) accepted", bad)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "plant/feed.json", "plant/feed"},
		{"", "-", "schematic"},
		{"out.png", "feed.json", "out"},
		{"out.svg", "feed.json", "out"},
		{"out", "feed.json", "out"},
		{"out.v2", "feed.json", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	single := &renderOpts{output: "diagram.png", formats: []string{"png"}}
	if got := outputPath("feed.json", "png", single); got != "diagram.png" {
		t.Errorf("single format output = %q", got)
	}
	multi := &renderOpts{formats: []string{"png", "topology"}}
	if got := outputPath("feed.json", "topology", multi); got != "feed_topology.svg" {
		t.Errorf("topology output = %q", got)
	}
}

func TestRender(t *testing.T) {
	c, home := newTestCLI(t)
	input := writeSchematic(t, home)

	if _, err := run(t, c, "render", input, "-f", "png,svg,dot"); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "feed.png"))
	if err != nil {
		t.Fatalf("png not written: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	// Components span (100,150)-(400,280); padded by 20 and doubled.
	if b := img.Bounds(); b.Dx() != 680 || b.Dy() != 340 {
		t.Errorf("png size = %dx%d, want 680x340", b.Dx(), b.Dy())
	}

	svg, err := os.ReadFile(filepath.Join(home, "feed.svg"))
	if err != nil || !bytes.HasPrefix(bytes.TrimSpace(svg), []byte("<svg")) {
		t.Errorf("svg output = %.40q, %v", svg, err)
	}

	dot, err := os.ReadFile(filepath.Join(home, "feed.dot"))
	if err != nil {
		t.Fatalf("dot not written: %v", err)
	}
	if !strings.Contains(string(dot), "digraph") || !strings.Contains(string(dot), "->") {
		t.Errorf("dot output lacks the wired edge:\n%s", dot)
	}
}

func TestRenderRejectsUnknownType(t *testing.T) {
	c, home := newTestCLI(t)
	path := filepath.Join(home, "bad.json")
	doc := `{"version":1,"components":[{"id":"x","type":"reactor","position":{"x":0,"y":0}}],"connections":[],"groups":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, c, "render", path, "-f", "svg")
	if err == nil {
		t.Fatal("document with an unknown component type rendered")
	}
	if _, statErr := os.Stat(filepath.Join(home, "bad.svg")); statErr == nil {
		t.Error("output written for an invalid document")
	}
	if pferrors.GetCode(err) == "" {
		t.Errorf("err = %v, want a coded error", err)
	}
}

func TestRenderBadFormat(t *testing.T) {
	c, home := newTestCLI(t)
	if _, err := run(t, c, "render", writeSchematic(t, home), "-f", "pdf"); err == nil {
		t.Error("pdf format accepted")
	}
}
