package layout

import (
	"fmt"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

func label(name string, c1, r1, c2 int, text string) Field {
	return Field{Name: name, Kind: Label, Rect: board.Rect{C1: c1, R1: r1, C2: c2, R2: r1}, Label: text, Color: board.White}
}

func numeric(name string, c1, r1, c2 int, c board.Color) Field {
	return Field{Name: name, Kind: Numeric, Rect: board.Rect{C1: c1, R1: r1, C2: c2, R2: r1}, Color: c}
}

func text(name string, c1, r1, c2, r2 int) Field {
	return Field{Name: name, Kind: Text, Rect: board.Rect{C1: c1, R1: r1, C2: c2, R2: r2}, Color: board.Amber}
}

// Builtin returns the layouts every board knows, sized for the default
// 30 by 10 geometry: scores, rounds and logo.
func Builtin() []Layout {
	rounds := Layout{
		Name: "rounds",
		Fields: []Field{
			label("round_label", 1, 1, 6, "ROUND"),
			numeric("round", 8, 1, 9, board.Amber),
			label("of_label", 11, 1, 12, "OF"),
			numeric("rounds", 14, 1, 15, board.Amber),
			numeric("clock", 24, 1, 30, board.Amber),
		},
	}
	for i := 1; i <= 4; i++ {
		row := 1 + 2*i
		rounds.Fields = append(rounds.Fields,
			text(fmt.Sprintf("player%d", i), 1, row, 20, row),
			numeric(fmt.Sprintf("score%d", i), 24, row, 30, board.Green),
		)
	}
	rounds.Fields = append(rounds.Fields, text("message", 1, 10, 30, 10))

	return []Layout{
		{
			Name: "scores",
			Fields: []Field{
				label("home_label", 2, 1, 9, "HOME"),
				label("away_label", 22, 1, 29, "AWAY"),
				numeric("clock", 12, 1, 19, board.Amber),
				text("home_name", 1, 2, 10, 2),
				text("away_name", 21, 2, 30, 2),
				numeric("home", 3, 4, 8, board.Red),
				numeric("away", 23, 4, 28, board.Blue),
				label("period_label", 12, 4, 19, "PERIOD"),
				numeric("period", 15, 5, 16, board.Amber),
				text("message", 1, 8, 30, 10),
			},
		},
		rounds,
		{
			Name: "logo",
			Fields: []Field{
				text("caption", 1, 10, 30, 10),
			},
		},
	}
}
