package lower

import (
	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ram"
	"github.com/datalogc/dlc/tu"
)

// Seminaive is the default Strategy: the main program is the whole of the
// evaluation plan and no extra subroutines are contributed.
type Seminaive struct{}

func (Seminaive) Name() string { return "seminaive" }

func (Seminaive) Subroutines(*tu.TranslationUnit, *ast.Clause, int) map[string]ram.Statement {
	return nil
}
