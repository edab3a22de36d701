package main

import (
	"strings"
	"testing"

	"github.com/benreynwar/slvcodec/internal/decl"
	"github.com/benreynwar/slvcodec/internal/design"
	"github.com/benreynwar/slvcodec/internal/symmath"
	"github.com/benreynwar/slvcodec/internal/typs"
)

func streamEntity(t *testing.T) *design.Entity {
	t.Helper()
	tables := &decl.Tables{
		Entities: []decl.EntityRow{
			{
				Name: "stream_port",
				Uses: []decl.UseRow{
					{Library: "ieee", Unit: "std_logic_1164", Within: "all"},
					{Library: "ieee", Unit: "numeric_std", Within: "all"},
				},
				Ports: []decl.PortRow{
					{Name: "clk", Direction: "in", Subtype: "std_logic"},
					{Name: "data", Direction: "in", Subtype: "unsigned(3 downto 0)"},
				},
			},
		},
	}
	d, err := design.Resolve(tables, symmath.DefaultRegistry(), design.Options{Strict: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	e := d.Entities["stream_port"]
	if e == nil {
		t.Fatal("stream_port missing")
	}
	return e
}

func TestEncodeStreamOneLinePerValue(t *testing.T) {
	e := streamEntity(t)
	in := strings.NewReader("{\"data\": 10}\n\n{\"data\": 3}\n")
	var out strings.Builder
	if err := encodeStream(e, typs.Generics{}, in, &out); err != nil {
		t.Fatalf("encodeStream: %v", err)
	}
	if got, want := out.String(), "1010\n0011\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestEncodeStreamReportsBadLine(t *testing.T) {
	e := streamEntity(t)
	in := strings.NewReader("{\"data\": 1}\nnot json\n")
	var out strings.Builder
	err := encodeStream(e, typs.Generics{}, in, &out)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("err = %v, want parse error naming line 2", err)
	}
}
