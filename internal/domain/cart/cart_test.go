package cart

import "testing"

func sample() Cart {
	return Cart{
		Items: []Item{
			{Key: "k1", Product: ProductRef{ID: "p1", DatabaseID: 11, Name: "Hoodie"}, Quantity: 2, Total: "$40.00"},
			{Key: "k2", Product: ProductRef{ID: "p2", DatabaseID: 12, Name: "Cap"}, Quantity: 1, Total: "$15.00"},
		},
		Subtotal: "$55.00",
		Total:    "$55.00",
	}
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	c := sample()
	clone := c.Clone()
	clone.Items[0].Quantity = 99

	if c.Items[0].Quantity != 2 {
		t.Error("Clone shares the items slice")
	}
}

func TestQuantityAndFind(t *testing.T) {
	t.Parallel()

	c := sample()
	if got := c.Quantity(); got != 3 {
		t.Errorf("Quantity() = %d, want 3", got)
	}
	it, ok := c.Find("k2")
	if !ok || it.Product.Name != "Cap" {
		t.Errorf("Find(k2) = %+v, %v", it, ok)
	}
	if _, ok := c.Find("nope"); ok {
		t.Error("Find(nope) should fail")
	}
	if c.IsEmpty() {
		t.Error("IsEmpty() = true for populated cart")
	}
	if !(Cart{}).IsEmpty() {
		t.Error("IsEmpty() = false for zero cart")
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[Status]string{
		StatusIdle:       "idle",
		StatusMutating:   "mutating",
		StatusRefetching: "refetching",
	} {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
