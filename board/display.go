package board

import (
	"fmt"
	"strings"
)

// String renders the board with face values, the way the shell and debug
// logs show it.
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("+------------------------+\n")
	for r := 0; r < Dim; r++ {
		sb.WriteString("|")
		for c := 0; c < Dim; c++ {
			fmt.Fprintf(&sb, "%6d", b.tiles[r][c].Face())
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("+------------------------+\n")
	return sb.String()
}
