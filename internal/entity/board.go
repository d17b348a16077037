package entity

import "encoding/json"

// BoardSize is the side of the square goban.
const BoardSize = 15

// Cell is a single intersection on the board. An empty cell is
// serialized as JSON null so clients can distinguish it from a stone.
type Cell string

const (
	CellEmpty Cell = ""
	CellBlack Cell = "black"
	CellWhite Cell = "white"
)

func (that Cell) MarshalJSON() ([]byte, error) {
	if that == CellEmpty {
		return []byte("null"), nil
	}

	return json.Marshal(string(that))
}

func (that *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*that = CellEmpty
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	*that = Cell(value)

	return nil
}

// Board is a row-major 15x15 grid of cells.
type Board [BoardSize][BoardSize]Cell

// Move is a single accepted stone placement.
type Move struct {
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	Player Cell `json:"player"`
}
