package transform

import "github.com/datalogc/dlc/ast"

// renameQualifiedNames walks every node reachable from root and rewrites
// each QualifiedName-valued field found on a recognised node kind through
// rename. It is the shared mechanism ComponentInstantiation uses both for
// type-parameter substitution (TypeBinding.Resolve) and for instance-name
// prefixing of locally declared types/relations: a renaming closure
// capturing a name→name table, applied through the mapper.
func renameQualifiedNames(root ast.Node, rename func(ast.QualifiedName) ast.QualifiedName) {
	ast.Inspect(root, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.Atom:
			v.Name = rename(v.Name)
		case *ast.UserDefinedFunctor:
			v.Name = rename(v.Name)
		case *ast.TypeCast:
			v.Type = rename(v.Type)
		case *ast.Relation:
			v.Name = rename(v.Name)
			for i := range v.Attributes {
				v.Attributes[i].TypeName = rename(v.Attributes[i].TypeName)
			}
		case *ast.SubsetType:
			v.Name = rename(v.Name)
			v.Base = rename(v.Base)
		case *ast.UnionType:
			v.Name = rename(v.Name)
			for i := range v.Elements {
				v.Elements[i] = rename(v.Elements[i])
			}
		case *ast.RecordType:
			v.Name = rename(v.Name)
			for i := range v.Fields {
				v.Fields[i].TypeName = rename(v.Fields[i].TypeName)
			}
		case *ast.AlgebraicDataType:
			v.Name = rename(v.Name)
			for b := range v.Branches {
				for f := range v.Branches[b].Fields {
					v.Branches[b].Fields[f].TypeName = rename(v.Branches[b].Fields[f].TypeName)
				}
			}
		case *ast.FunctorDeclaration:
			v.Name = rename(v.Name)
			for i := range v.Params {
				v.Params[i].TypeName = rename(v.Params[i].TypeName)
			}
			v.Return.TypeName = rename(v.Return.TypeName)
		case *ast.Directive:
			v.Relation = rename(v.Relation)
		case *ast.ComponentType:
			v.Name = rename(v.Name)
			for i := range v.TypeArgs {
				v.TypeArgs[i] = rename(v.TypeArgs[i])
			}
		}
		return true
	})
}

// prefixedName returns name with prefix segments prepended, used to
// qualify every locally declared type/relation of an instantiated
// component with its instance name chain.
func prefixedName(prefix []string, name ast.QualifiedName) ast.QualifiedName {
	return name.Prepend(prefix...)
}
