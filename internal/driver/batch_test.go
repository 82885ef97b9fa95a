package driver_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"bridgeir/internal/annot"
	"bridgeir/internal/bridge"
	"bridgeir/internal/diag"
	"bridgeir/internal/driver"
	"bridgeir/internal/ir"
)

func strPtr(s string) *string { return &s }

func kv(key, value string) annot.Pair {
	return annot.Pair{Key: key, Value: annot.Literal{Value: value}}
}

// mixedDecls exercises every rule and the annotation findings.
func mixedDecls(n int) []bridge.Declaration {
	decls := make([]bridge.Declaration, 0, n)
	for i := range n {
		name := fmt.Sprintf("S%d", i)
		field := []bridge.RawField{{Name: strPtr("x"), Type: "u8"}}
		var d bridge.Declaration
		switch i % 6 {
		case 0:
			d = bridge.Declaration{Ident: name, Shape: ir.ShapeUnit}
		case 1:
			d = bridge.Declaration{Ident: name, Shape: ir.ShapeNamed, Fields: field}
		case 2:
			d = bridge.Declaration{Ident: name, Shape: ir.ShapeNamed, Fields: field,
				Annotations: [][]annot.Pair{{kv("representation", "class")}}}
		case 3:
			d = bridge.Declaration{Ident: name, Shape: ir.ShapeUnit,
				Annotations: [][]annot.Pair{{kv("representation", "class")}}}
		case 4:
			d = bridge.Declaration{Ident: name, Shape: ir.ShapeNamed, Fields: field,
				Annotations: [][]annot.Pair{{kv("representation", "blob"), kv("color", "red")}}}
		case 5:
			d = bridge.Declaration{Ident: name, Shape: ir.ShapeNamed, Fields: field,
				Annotations: [][]annot.Pair{{kv("representation", "struct"), kv("exposedName", "Ffi"+name)}}}
		}
		decls = append(decls, d)
	}
	return decls
}

func TestResolveBatch_MatchesSequentialOrder(t *testing.T) {
	decls := mixedDecls(60)

	seqBag := diag.NewBag(1000)
	seq := make([]ir.ResolvedStruct, len(decls))
	for i := range decls {
		seq[i] = bridge.Resolve(&decls[i], diag.BagReporter{Bag: seqBag})
	}

	for _, jobs := range []int{1, 4, 32} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			res, err := driver.ResolveBatch(context.Background(), decls, driver.Options{Jobs: jobs})
			if err != nil {
				t.Fatalf("ResolveBatch: %v", err)
			}
			if !reflect.DeepEqual(res.Structs, seq) {
				t.Fatalf("structs differ from sequential resolution")
			}
			if !reflect.DeepEqual(res.Bag.Items(), seqBag.Items()) {
				t.Fatalf("diagnostics differ from sequential resolution:\n got %+v\nwant %+v", res.Bag.Items(), seqBag.Items())
			}
		})
	}
}

func TestResolveBatch_Empty(t *testing.T) {
	res, err := driver.ResolveBatch(context.Background(), nil, driver.Options{})
	if err != nil {
		t.Fatalf("ResolveBatch: %v", err)
	}
	if len(res.Structs) != 0 || res.Bag.Len() != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestResolveBatch_DiagnosticLimitKeepsEarliest(t *testing.T) {
	field := []bridge.RawField{{Type: "u8"}}
	decls := []bridge.Declaration{
		{Ident: "A", Shape: ir.ShapeUnnamed, Fields: field},
		{Ident: "B", Shape: ir.ShapeUnnamed, Fields: field},
		{Ident: "C", Shape: ir.ShapeUnnamed, Fields: field},
		{Ident: "D", Shape: ir.ShapeUnnamed, Fields: field},
	}
	res, err := driver.ResolveBatch(context.Background(), decls, driver.Options{Jobs: 4, MaxDiagnostics: 2})
	if err != nil {
		t.Fatalf("ResolveBatch: %v", err)
	}
	if len(res.Structs) != 4 {
		t.Fatalf("every declaration must still resolve, got %d", len(res.Structs))
	}
	items := res.Bag.Items()
	if len(items) != 2 || items[0].Decl != "A" || items[1].Decl != "B" {
		t.Fatalf("unexpected diagnostics: %+v", items)
	}
}

func TestResolveBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.ResolveBatch(ctx, mixedDecls(8), driver.Options{Jobs: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
