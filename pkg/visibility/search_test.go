package visibility

import (
	"reflect"
	"testing"

	"github.com/matzehuels/datamapper/pkg/schema"
)

func personInput() *schema.IOType {
	return &schema.IOType{
		ID: "input", Kind: schema.KindRecord,
		Fields: []*schema.IOType{
			{ID: "fullName", Kind: schema.KindString},
			{ID: "address", Kind: schema.KindRecord, Fields: []*schema.IOType{
				{ID: "city", Kind: schema.KindString},
				{ID: "zip", Kind: schema.KindString},
			}},
			{ID: "orders", Kind: schema.KindArray, Member: &schema.IOType{
				ID: "order", Kind: schema.KindRecord,
				Fields: []*schema.IOType{{ID: "total", Kind: schema.KindDecimal}, {ID: "cityCode", Kind: schema.KindString}},
			}},
		},
	}
}

func fieldNames(t *schema.IOType) []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, f.Name())
	}
	return out
}

func TestFilterInputsEmptyTerm(t *testing.T) {
	in := []*schema.IOType{personInput()}
	got := FilterInputs(in, "  ")
	if len(got) != 1 || got[0] != in[0] {
		t.Error("empty term should return the unfiltered tree")
	}
}

func TestFilterInputsRetainsAncestors(t *testing.T) {
	got := FilterInputs([]*schema.IOType{personInput()}, "CITY")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	root := got[0]
	if names := fieldNames(root); !reflect.DeepEqual(names, []string{"address", "orders"}) {
		t.Errorf("root fields = %v, want [address orders]", names)
	}
	if names := fieldNames(root.Fields[0]); !reflect.DeepEqual(names, []string{"city"}) {
		t.Errorf("address fields = %v, want [city]", names)
	}
	if names := fieldNames(root.Fields[1].Member); !reflect.DeepEqual(names, []string{"cityCode"}) {
		t.Errorf("order fields = %v, want [cityCode]", names)
	}
}

func TestFilterMatchingAncestorKeepsSubtree(t *testing.T) {
	got := FilterInputs([]*schema.IOType{personInput()}, "addr")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	addr := got[0].Fields[0]
	if names := fieldNames(addr); !reflect.DeepEqual(names, []string{"city", "zip"}) {
		t.Errorf("address fields = %v, want whole subtree", names)
	}
}

func TestFilterInputsDropsRootsWithoutMatch(t *testing.T) {
	got := FilterInputs([]*schema.IOType{personInput()}, "nothing-matches")
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	for _, term := range []string{"city", "order", "x", ""} {
		once := FilterInputs([]*schema.IOType{personInput()}, term)
		twice := FilterInputs(once, term)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("FilterInputs not idempotent for %q", term)
		}

		out := FilterOutput(personInput(), term)
		if !reflect.DeepEqual(out, FilterOutput(out, term)) {
			t.Errorf("FilterOutput not idempotent for %q", term)
		}

		ms := testMappings()
		m1 := FilterMappings(ms, term)
		if !reflect.DeepEqual(m1, FilterMappings(m1, term)) {
			t.Errorf("FilterMappings not idempotent for %q", term)
		}
	}
}

func TestFilterOutputKeepsRoot(t *testing.T) {
	out := FilterOutput(personInput(), "nothing-matches")
	if out == nil {
		t.Fatal("output root should be retained")
	}
	if len(out.Fields) != 0 {
		t.Errorf("fields = %v, want none", fieldNames(out))
	}
}

func testMappings() []schema.Mapping {
	return []schema.Mapping{
		{Output: "name", Inputs: []string{"input.fullName"}, Expression: "input.fullName"},
		{Output: "items", Expression: "[]", Elements: []schema.Element{
			{Mappings: []schema.Mapping{{Output: "items.0.qty", Expression: "1"}}},
			{Mappings: []schema.Mapping{{Output: "items.1.price", Expression: "2"}}},
		}},
		{Output: "address.city", Expression: "x"},
	}
}

func TestFilterMappings(t *testing.T) {
	ms := testMappings()

	if got := FilterMappings(ms, ""); !reflect.DeepEqual(got, ms) {
		t.Error("empty term should return mappings unchanged")
	}

	got := FilterMappings(ms, "CITY")
	if len(got) != 1 || got[0].Output != "address.city" {
		t.Errorf("FilterMappings(city) = %+v", got)
	}

	got = FilterMappings(ms, "price")
	if len(got) != 1 || got[0].Output != "items" {
		t.Fatalf("FilterMappings(price) = %+v", got)
	}
	if len(got[0].Elements) != 2 {
		t.Fatalf("element buckets = %d, want positions preserved", len(got[0].Elements))
	}
	if len(got[0].Elements[0].Mappings) != 0 || len(got[0].Elements[1].Mappings) != 1 {
		t.Errorf("elements = %+v", got[0].Elements)
	}

	got = FilterMappings(ms, "items")
	if len(got) != 1 || len(got[0].Elements[0].Mappings) != 1 {
		t.Error("a matching array mapping keeps its whole subtree")
	}
}
