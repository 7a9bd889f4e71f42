package tags

// Matrix is the symmetric co-occurrence matrix of a universe, indexed by tag
// position. The diagonal is always 0.
type Matrix struct {
	Labels []string
	Cells  [][]int64
}

// Edge is a weighted undirected edge of the co-occurrence graph, I < J.
type Edge struct {
	I, J   int
	Weight int64
}

func BuildMatrix(u Universe, counts Counts) Matrix {
	n := u.Len()
	cells := make([][]int64, n)
	for i := range cells {
		cells[i] = make([]int64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			count := counts.Get(u.At(i), u.At(j))
			cells[i][j] = count
			cells[j][i] = count
		}
	}

	return Matrix{Labels: u.Tags(), Cells: cells}
}

func (m Matrix) Size() int {
	return len(m.Labels)
}

func (m Matrix) At(i, j int) int64 {
	return m.Cells[i][j]
}

// Edges lists the non-zero cells of the upper triangle in row order.
func (m Matrix) Edges() []Edge {
	var edges []Edge
	for i := 0; i < len(m.Cells); i++ {
		for j := i + 1; j < len(m.Cells); j++ {
			if m.Cells[i][j] == 0 {
				continue
			}
			edges = append(edges, Edge{I: i, J: j, Weight: m.Cells[i][j]})
		}
	}
	return edges
}
