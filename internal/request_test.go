package internal

import (
	"errors"
	"testing"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

func TestAddParameter_RejectsUnknownName(t *testing.T) {
	r, err := NewNewLinksRequest("golang")
	if err != nil {
		t.Fatalf("NewNewLinksRequest returned error: %v", err)
	}

	err = r.AddParameter("bogus", "x")
	var argErr *pkgerrs.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %T (%v)", err, err)
	}
	if argErr.Parameter != "bogus" {
		t.Errorf("expected parameter bogus, got %q", argErr.Parameter)
	}
}

func TestAddParameter_RejectsCompositeValues(t *testing.T) {
	r, _ := NewNewLinksRequest("golang")

	for _, v := range []any{[]string{"a"}, map[string]int{"a": 1}, struct{}{}} {
		var argErr *pkgerrs.ArgumentError
		if err := r.AddParameter(ParamLimit, v); !errors.As(err, &argErr) {
			t.Errorf("AddParameter(%T) expected ArgumentError, got %v", v, err)
		}
	}
}

func TestAddParameter_EmptyValueUnsets(t *testing.T) {
	r, _ := NewNewLinksRequest("golang")

	if err := r.AddParameter(ParamAfter, "t3_abc"); err != nil {
		t.Fatalf("AddParameter returned error: %v", err)
	}
	if _, ok := r.Parameter(ParamAfter); !ok {
		t.Fatal("expected after to be set")
	}

	for _, empty := range []any{"", nil, 0, false} {
		_ = r.AddParameter(ParamAfter, "t3_abc")
		if err := r.AddParameter(ParamAfter, empty); err != nil {
			t.Fatalf("AddParameter(%v) returned error: %v", empty, err)
		}
		if _, ok := r.Parameter(ParamAfter); ok {
			t.Errorf("expected %#v to unset after", empty)
		}
	}
}

func TestValidate_UnconfiguredDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		req   *Request
		field string
	}{
		{name: "no verb", req: &Request{operation: "x", path: "/x"}, field: "verb"},
		{name: "bad verb", req: &Request{operation: "x", verb: "PATCH", path: "/x"}, field: "verb"},
		{name: "no path", req: &Request{operation: "x", verb: VerbGet}, field: "path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfgErr *pkgerrs.ConfigError
			if err := tt.req.Validate(); !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestValidate_MissingMandatory(t *testing.T) {
	r, _ := NewTopLinksRequest("golang")

	err := r.Validate()
	var argErr *pkgerrs.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
	if argErr.Parameter != ParamTime {
		t.Errorf("expected missing parameter %q, got %q", ParamTime, argErr.Parameter)
	}

	if err := r.AddParameter(ParamTime, "week"); err != nil {
		t.Fatalf("AddParameter returned error: %v", err)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("second Validate changed outcome: %v", err)
	}
}

func TestEncode(t *testing.T) {
	r, _ := NewHotLinksRequest("golang")
	_ = r.AddParameter(ParamLimit, 25)
	_ = r.AddParameter(ParamSrDetail, true)
	_ = r.AddParameter(ParamGeo, "GB")

	got := r.Encode().Encode()
	want := "g=GB&limit=25&sr_detail=true"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestAddHeader(t *testing.T) {
	r := NewMeRequest()
	r.AddHeader("X-Test", "1")

	h := r.Headers()
	if h["X-Test"] != "1" {
		t.Errorf("expected header to be recorded, got %v", h)
	}
	h["X-Test"] = "mutated"
	if r.Headers()["X-Test"] != "1" {
		t.Error("Headers must return a copy")
	}
}
