package lineage

import (
	"fmt"

	"lineage/internal/engine/parser"
)

// Location is the 1-based position of a token and its byte length.
type Location struct {
	Line   uint
	Column uint
	Length uint
}

func locationOf(n parser.Node) Location {
	pos := n.StartPosition()
	length := uint(0)
	if end, start := n.EndByte(), n.StartByte(); end > start {
		length = end - start
	}
	return Location{
		Line:   pos.Row + 1,
		Column: pos.Column + 1,
		Length: length,
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Before orders locations by line, then column.
func (l Location) Before(other Location) bool {
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Column < other.Column
}
