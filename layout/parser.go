package layout

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"pursuit/grid"
)

// A board file lists one directive per line:
//
//	# comment
//	size 10 x 10
//	obstacle 1 1
//	goal 0 2
//	seeker 0 0
//	chaser 5 5
//
// The size directive comes first and exactly once. Coordinates are row then
// column.
type boardFile struct {
	Directives []*directive `parser:"@@*"`
}

type directive struct {
	Pos lexer.Position

	Size *sizeDirective `parser:"  'size' @@"`
	Cell *cellDirective `parser:"| @@"`
}

type sizeDirective struct {
	Rows int `parser:"@Int 'x'"`
	Cols int `parser:"@Int"`
}

type cellDirective struct {
	Kind string `parser:"@('obstacle' | 'goal' | 'seeker' | 'chaser')"`
	Row  int    `parser:"@Int"`
	Col  int    `parser:"@Int"`
}

var boardLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[boardFile](
	participle.Lexer(boardLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Load reads and parses the board file at path
func Load(path string) (*grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return Parse(path, string(data))
}

// Parse builds a grid from board file text. name is used in error positions.
func Parse(name, text string) (*grid.Grid, error) {
	file, err := parser.ParseString(name, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if len(file.Directives) == 0 || file.Directives[0].Size == nil {
		return nil, fmt.Errorf("%s: board must start with a size directive: %w", name, ErrInvalidLayout)
	}

	size := file.Directives[0].Size
	if size.Rows <= 0 || size.Cols <= 0 {
		return nil, fmt.Errorf("%s: size %d x %d: %w", file.Directives[0].Pos, size.Rows, size.Cols, ErrInvalidLayout)
	}
	g := grid.New(size.Rows, size.Cols)

	for _, d := range file.Directives[1:] {
		if d.Size != nil {
			return nil, fmt.Errorf("%s: duplicate size directive: %w", d.Pos, ErrInvalidLayout)
		}
		if err := place(g, d.Cell); err != nil {
			return nil, fmt.Errorf("%s: %s %d %d: %w", d.Pos, d.Cell.Kind, d.Cell.Row, d.Cell.Col, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

func place(g *grid.Grid, c *cellDirective) error {
	p := grid.Position{Row: c.Row, Col: c.Col}
	kind, err := grid.ParseCellKind(c.Kind)
	if err != nil {
		return err
	}
	switch kind {
	case grid.Obstacle:
		return g.PlaceObstacle(p)
	case grid.Goal:
		return g.PlaceGoal(p)
	case grid.Seeker:
		_, err = g.PlaceSeeker(p)
	case grid.Chaser:
		_, err = g.PlaceChaser(p)
	}
	return err
}
