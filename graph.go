package noob

// Depends adds a dependency edge n -> other ("n depends on other"),
// maintaining the reverse edge. It is idempotent and grounded on
// original_source/node.py's Node.depends, which first removes any stale
// reciprocal entry before appending, so repeated calls never duplicate
// an edge.
func (n *Node) Depends(other *Node) {
	n.Parents = removeNode(n.Parents, other)
	other.Children = removeNode(other.Children, n)

	n.Parents = append(n.Parents, other)
	other.Children = append(other.Children, n)
}

func removeNode(list []*Node, target *Node) []*Node {
	for i, c := range list {
		if c == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Linearise returns the transitive prerequisites of n, excluding n
// itself, ordered so that every node appears after all of its own
// prerequisites. It is a direct port of original_source/node.py's
// getDependentList: a level-by-level BFS over Parents that, on
// revisiting an already-seen node, moves it to the end (so a node shared
// by two branches ends up positioned after the deeper branch that also
// needs it), followed by a single reversal.
func (n *Node) Linearise() []*Node {
	var sequence []*Node
	toVisit := []*Node{n}

	for len(toVisit) > 0 {
		var next []*Node
		for _, node := range toVisit {
			for _, parent := range node.Parents {
				sequence = removeNode(sequence, parent)
				sequence = append(sequence, parent)
				if !containsNode(toVisit, parent) && !containsNode(next, parent) {
					next = append(next, parent)
				}
			}
		}
		toVisit = next
	}

	reversed := make([]*Node, len(sequence))
	for i, node := range sequence {
		reversed[len(sequence)-1-i] = node
	}
	return reversed
}

func containsNode(list []*Node, target *Node) bool {
	for _, n := range list {
		if n == target {
			return true
		}
	}
	return false
}
