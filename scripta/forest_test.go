package scripta

import "testing"

type indentItem struct {
	name   string
	indent int
}

func TestBuildForestFlat(t *testing.T) {
	items := []indentItem{{"a", 0}, {"b", 0}, {"c", 0}}
	forest := BuildForest(items, func(it indentItem) int { return it.indent })
	if len(forest) != 3 {
		t.Fatalf("got %d roots, want 3", len(forest))
	}
	for _, root := range forest {
		if len(root.Children) != 0 {
			t.Errorf("root %s has children, want none", root.Value.name)
		}
	}
}

func TestBuildForestNesting(t *testing.T) {
	items := []indentItem{
		{"root", 0},
		{"child1", 2},
		{"grandchild", 4},
		{"child2", 2},
	}
	forest := BuildForest(items, func(it indentItem) int { return it.indent })
	if len(forest) != 1 {
		t.Fatalf("got %d roots, want 1: %+v", len(forest), forest)
	}
	root := forest[0]
	if root.Value.name != "root" {
		t.Fatalf("root = %+v", root.Value)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2: %+v", len(root.Children), root.Children)
	}
	if root.Children[0].Value.name != "child1" || root.Children[1].Value.name != "child2" {
		t.Errorf("children = %+v", root.Children)
	}
	child1 := root.Children[0]
	if len(child1.Children) != 1 || child1.Children[0].Value.name != "grandchild" {
		t.Errorf("child1.Children = %+v", child1.Children)
	}
	if len(root.Children[1].Children) != 0 {
		t.Errorf("child2 should have no children: %+v", root.Children[1].Children)
	}
}

// invariant #5 (spec.md §5): every root has indent 0 and every child's
// indent strictly exceeds its parent's.
func TestBuildForestIndentInvariant(t *testing.T) {
	items := []indentItem{
		{"a", 0}, {"b", 2}, {"c", 5}, {"d", 1}, {"e", 0}, {"f", 3},
	}
	forest := BuildForest(items, func(it indentItem) int { return it.indent })

	var check func(n *Tree[indentItem], parentIndent int, hasParent bool)
	check = func(n *Tree[indentItem], parentIndent int, hasParent bool) {
		if !hasParent && n.Value.indent != 0 {
			t.Errorf("root %q has indent %d, want 0", n.Value.name, n.Value.indent)
		}
		if hasParent && n.Value.indent <= parentIndent {
			t.Errorf("child %q indent %d does not exceed parent indent %d", n.Value.name, n.Value.indent, parentIndent)
		}
		for _, c := range n.Children {
			check(c, n.Value.indent, true)
		}
	}
	for _, root := range forest {
		check(root, 0, false)
	}
}

func TestWalkDepthFirstOrder(t *testing.T) {
	items := []indentItem{
		{"a", 0},
		{"b", 2},
		{"c", 4},
		{"d", 0},
	}
	forest := BuildForest(items, func(it indentItem) int { return it.indent })

	var order []string
	WalkDepthFirst(forest, func(n *Tree[indentItem]) {
		order = append(order, n.Value.name)
	})
	want := []string{"a", "b", "c", "d"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestBuildForestEmpty(t *testing.T) {
	forest := BuildForest([]indentItem{}, func(it indentItem) int { return it.indent })
	if len(forest) != 0 {
		t.Errorf("got %d roots, want 0", len(forest))
	}
}
