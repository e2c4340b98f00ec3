package analysis

import (
	"strconv"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/tu"
)

// IOType partitions Relations into input / output / printsize / limitsize
// sets from directive nodes.
type IOType struct {
	input     map[string]bool
	output    map[string]bool
	printsize map[string]bool
	limitsize map[string]int
}

type ioTypeKey struct{}

// IOTypeOf returns the (cached) I/O classification for tu.
func IOTypeOf(t *tu.TranslationUnit) *IOType {
	return tu.Get(t, ioTypeKey{}, func() *IOType {
		return computeIOType(t.Program)
	})
}

func computeIOType(p *ast.Program) *IOType {
	io := &IOType{
		input:     map[string]bool{},
		output:    map[string]bool{},
		printsize: map[string]bool{},
		limitsize: map[string]int{},
	}
	for _, d := range p.Directives {
		name := d.Relation.String()
		switch d.Type {
		case ast.DirectiveInput:
			io.input[name] = true
		case ast.DirectiveOutput:
			io.output[name] = true
		case ast.DirectivePrintsize:
			io.printsize[name] = true
		case ast.DirectiveLimitsize:
			if raw, ok := d.Get("n"); ok {
				if n, err := strconv.Atoi(raw); err == nil {
					io.limitsize[name] = n
				}
			}
		}
	}
	return io
}

func (io *IOType) IsInput(rel string) bool     { return io.input[rel] }
func (io *IOType) IsOutput(rel string) bool    { return io.output[rel] }
func (io *IOType) IsPrintsize(rel string) bool { return io.printsize[rel] }
func (io *IOType) LimitSize(rel string) (int, bool) {
	n, ok := io.limitsize[rel]
	return n, ok
}

// InputRelations returns every relation name marked as an input.
func (io *IOType) InputRelations() []string { return setToSortedSlice(io.input) }

// OutputRelations returns every relation name marked as an output or
// printsize (both surface tuples to the caller).
func (io *IOType) OutputRelations() []string {
	merged := map[string]bool{}
	for k := range io.output {
		merged[k] = true
	}
	for k := range io.printsize {
		merged[k] = true
	}
	return setToSortedSlice(merged)
}
