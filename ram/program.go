package ram

import "fmt"

// RelationDecl is a RAM-level relation declaration: name, arity (including
// any auxiliary/provenance columns), and the representation the AST
// Relation carried through.
type RelationDecl struct {
	Name           string
	Arity          int
	AuxiliaryArity int
	Representation string
}

func (r RelationDecl) Dump(depth int) string {
	return fmt.Sprintf("%s%s(arity=%d, aux=%d, repr=%s)\n",
		indent(depth), r.Name, r.Arity, r.AuxiliaryArity, r.Representation)
}

// Program is the RAM program a transformed AST lowers into: a set
// of relation declarations, a main statement tree, and named subroutines
// (e.g. one provenance subroutine per clause under the provenance
// strategy).
type Program struct {
	Relations   []RelationDecl
	Main        Statement
	Subroutines map[string]Statement
}

// SubroutineNames returns the subroutine names in a stable, sorted order
// for deterministic dumps.
func (p *Program) SubroutineNames() []string {
	names := make([]string, 0, len(p.Subroutines))
	for n := range p.Subroutines {
		names = append(names, n)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}

// Dump renders the canonical indented-tree text form printed by
// `--show transformed-ram`: a DECLARATION block, a BEGIN MAIN block, and
// one block per subroutine.
func (p *Program) Dump() string {
	out := "PROGRAM\n"
	out += "  DECLARATION\n"
	for _, r := range p.Relations {
		out += r.Dump(2)
	}
	out += "  END DECLARATION\n"
	out += "  BEGIN MAIN\n"
	if p.Main != nil {
		out += p.Main.Dump(2)
	}
	out += "  END MAIN\n"
	for _, name := range p.SubroutineNames() {
		out += fmt.Sprintf("  SUBROUTINE %s\n", name)
		out += p.Subroutines[name].Dump(2)
		out += fmt.Sprintf("  END SUBROUTINE %s\n", name)
	}
	out += "END PROGRAM\n"
	return out
}
