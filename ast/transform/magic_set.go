package transform

import (
	"strings"

	"github.com/datalogc/dlc/ast"
	"github.com/datalogc/dlc/ast/analysis"
	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/tu"
)

// MagicSetTransformer is a four-stage sub-pipeline — Normalise, Label,
// Adorn, MagicCore — guarded by a global trigger: the `magic-transform`
// config flag, or any relation carrying the MAGIC qualifier.
type MagicSetTransformer struct{}

func (MagicSetTransformer) Name() string      { return "MagicSet" }
func (MagicSetTransformer) Clone() Transformer { return MagicSetTransformer{} }

func (MagicSetTransformer) Apply(t *tu.TranslationUnit) bool {
	if !magicTriggered(t) {
		return false
	}

	changed := false
	if normaliseForMagic(t) {
		changed = true
		t.Invalidate()
	}

	ignored := computeIgnoredSets(t)
	if labelNegatives(t, ignored) {
		changed = true
		t.Invalidate()
		ignored = computeIgnoredSets(t)
	}

	markerInfo := adorn(t, ignored)
	if len(markerInfo) > 0 {
		changed = true
		t.Invalidate()
	}

	if magicCore(t, markerInfo) {
		changed = true
		t.Invalidate()
	}

	return changed
}

func magicTriggered(t *tu.TranslationUnit) bool {
	if t.Config.GetBool(config.KeyMagicTransform) {
		return true
	}
	if len(t.Config.List(config.KeyMagicTransform)) > 0 {
		return true
	}
	for _, r := range t.Program.Relations {
		if r.HasQualifier(ast.QualifierMagic) {
			return true
		}
	}
	return false
}

func magicExcluded(t *tu.TranslationUnit, name string) bool {
	for _, n := range t.Config.List(config.KeyMagicTransformExclude) {
		if n == name {
			return true
		}
	}
	for _, r := range t.Program.Relations {
		if r.Name.String() == name {
			return r.HasQualifier(ast.QualifierNoMagic)
		}
	}
	return false
}

// ---- ignored-relation sets ----

type ignoredSets struct {
	trivially map[string]bool
	strongly  map[string]bool
	weakly    map[string]bool
}

func computeIgnoredSets(t *tu.TranslationUnit) *ignoredSets {
	io := analysis.IOTypeOf(t)
	detail := analysis.RelationDetailCacheOf(t)
	prec := analysis.PrecedenceGraphOf(t)
	scc := analysis.SCCGraphOf(t)

	trivially := map[string]bool{}
	for _, r := range t.Program.Relations {
		name := r.Name.String()
		clauses := detail.Clauses(name)
		if io.IsInput(name) {
			trivially[name] = true
			continue
		}
		if len(clauses) == 0 {
			trivially[name] = true
			continue
		}
		allFacts := true
		for _, c := range clauses {
			if !c.IsFact() {
				allFacts = false
				break
			}
		}
		if allFacts {
			trivially[name] = true
		}
	}

	counterRelations := map[string]bool{}
	for _, c := range t.Program.Clauses {
		hasCounter := false
		ast.Inspect(c, func(n ast.Node) bool {
			if _, ok := n.(*ast.Counter); ok {
				hasCounter = true
			}
			return true
		})
		if hasCounter {
			counterRelations[c.Head.Name.String()] = true
		}
	}

	strongly := map[string]bool{}
	for name := range counterRelations {
		strongly[name] = true
	}
	for i := 0; i < 64; i++ {
		added := false
		for name := range strongly {
			for _, succ := range prec.Successors(name) {
				if !strongly[succ] {
					strongly[succ] = true
					added = true
				}
			}
			sccIdx := scc.GetSCC(name)
			for _, member := range scc.GetInternalRelations(sccIdx) {
				if !strongly[member] {
					strongly[member] = true
					added = true
				}
			}
		}
		if !added {
			break
		}
	}

	weakly := map[string]bool{}
	for name := range trivially {
		weakly[name] = true
	}
	for name := range strongly {
		weakly[name] = true
	}
	for _, r := range t.Program.Relations {
		name := r.Name.String()
		if r.RelationRepresentation == ast.RepresentationEqrel {
			weakly[name] = true
		}
		if len(r.FunctionalDependencies) > 0 {
			weakly[name] = true
		}
		if isNeglabelled(name) {
			weakly[name] = true
		}
	}
	for _, c := range t.Program.Clauses {
		if c.Plan != nil && len(c.Plan.Order) > 0 {
			weakly[c.Head.Name.String()] = true
		}
		for _, lit := range c.Body {
			bc, ok := lit.(*ast.BinaryConstraint)
			if !ok {
				continue
			}
			if isOrderDependentOp(bc.Op) {
				weakly[c.Head.Name.String()] = true
			}
		}
		if counterRelations[c.Head.Name.String()] {
			for _, lit := range c.Body {
				if atom, ok := lit.(*ast.Atom); ok {
					weakly[atom.Name.String()] = true
				}
			}
		}
	}

	// Fixpoint: any relation reachable, in any clause, from an
	// already-ignored atom's position-to-the-right — preserve the
	// literal left-to-right scan on the current clause body.
	for i := 0; i < 64; i++ {
		added := false
		for _, c := range t.Program.Clauses {
			seenIgnored := false
			for _, lit := range c.Body {
				atom, ok := lit.(*ast.Atom)
				if !ok {
					if neg, ok := lit.(*ast.Negation); ok {
						atom = neg.Atom
					} else {
						continue
					}
				}
				name := atom.Name.String()
				if seenIgnored && !weakly[name] {
					weakly[name] = true
					added = true
				}
				if weakly[name] {
					seenIgnored = true
				}
			}
		}
		if !added {
			break
		}
	}

	return &ignoredSets{trivially: trivially, strongly: strongly, weakly: weakly}
}

func isOrderDependentOp(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

// ---- Normalise ----

func normaliseForMagic(t *tu.TranslationUnit) bool {
	io := analysis.IOTypeOf(t)
	changed := false

	// Snapshot each relation's original clause set up front: the bridge
	// rules this pass introduces also head-name the original relation, so
	// querying ClausesForRelation mid-pass would re-capture them.
	origClauses := map[string][]*ast.Clause{}
	for _, r := range t.Program.Relations {
		origClauses[r.Name.String()] = append([]*ast.Clause(nil), t.Program.ClausesForRelation(r.Name)...)
	}

	for _, r := range t.Program.Relations {
		name := r.Name.String()
		isIn := io.IsInput(name)
		isOut := io.IsOutput(name)
		hasIDB := len(origClauses[name]) > 0

		if isIn && isOut {
			splitName := ast.ParseQualifiedName("@split_in." + name)
			split := r.CloneRelation()
			split.Name = splitName
			split.Qualifiers = map[ast.Qualifier]bool{ast.QualifierInput: true}
			t.Program.Relations = append(t.Program.Relations, split)
			t.Program.Clauses = append(t.Program.Clauses, bridgeClause(r, splitName, r.Name))
			changed = true
		}
		if isIn && hasIDB {
			intermName := ast.ParseQualifiedName("@interm_in." + name)
			interm := r.CloneRelation()
			interm.Name = intermName
			t.Program.Relations = append(t.Program.Relations, interm)
			for _, c := range origClauses[name] {
				c.Head.Name = intermName
			}
			t.Program.Clauses = append(t.Program.Clauses, bridgeClause(r, r.Name, intermName))
			changed = true
		}
		if isOut && hasIDB && !isIn {
			// A relation that is both input and output with IDB rules
			// already routed those rules through @interm_in above;
			// @interm_out only applies to pure-output IDB relations.
			intermName := ast.ParseQualifiedName("@interm_out." + name)
			interm := r.CloneRelation()
			interm.Name = intermName
			t.Program.Relations = append(t.Program.Relations, interm)
			for _, c := range origClauses[name] {
				c.Head.Name = intermName
			}
			t.Program.Clauses = append(t.Program.Clauses, bridgeClause(r, intermName, r.Name))
			changed = true
		}
	}

	if liftAbdulArguments(t) {
		changed = true
	}

	return changed
}

func bridgeClause(r *ast.Relation, headName, bodyName ast.QualifiedName) *ast.Clause {
	args := make([]ast.Argument, len(r.Attributes))
	for i := range r.Attributes {
		args[i] = &ast.Variable{Name: "@bridge" + itoa(i), P: r.P}
	}
	headArgs := make([]ast.Argument, len(args))
	bodyArgs := make([]ast.Argument, len(args))
	for i, a := range args {
		headArgs[i] = a.Clone().(ast.Argument)
		bodyArgs[i] = a.Clone().(ast.Argument)
	}
	return &ast.Clause{
		Head: &ast.Atom{Name: headName, Args: headArgs, P: r.P},
		Body: []ast.Literal{&ast.Atom{Name: bodyName, Args: bodyArgs, P: r.P}},
		P:    r.P,
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// liftAbdulArguments lifts every non-variable argument in a head or body
// atom (other than the RHS of a variable-equality constraint) to a fresh
// `@abdulN` variable constrained by equality.
func liftAbdulArguments(t *tu.TranslationUnit) bool {
	changed := false
	gen := ast.NewNameGenerator("@abdul")
	for _, c := range t.Program.Clauses {
		lift := func(atom *ast.Atom) {
			for i, arg := range atom.Args {
				if _, ok := arg.(*ast.Variable); ok {
					continue
				}
				if _, ok := arg.(*ast.UnnamedVariable); ok {
					continue
				}
				v := gen.FreshVariable(arg.Pos())
				c.Body = append(c.Body, &ast.BinaryConstraint{Op: "=", Left: v, Right: arg, P: arg.Pos()})
				atom.Args[i] = v
				changed = true
			}
		}
		lift(c.Head)
		for _, lit := range c.Body {
			switch l := lit.(type) {
			case *ast.Atom:
				lift(l)
			case *ast.Negation:
				lift(l.Atom)
			}
		}
	}
	return changed
}

// ---- Label ----

// isNeglabelled reports whether name is already a `@neglabel.`-prefixed
// copy.
func isNeglabelled(name string) bool {
	return strings.HasPrefix(name, "@neglabel.")
}

// notLabelSet is trivially ∪ strongly: the relations negative/positive
// labelling must never rename or clone.
func notLabelSet(ignored *ignoredSets) map[string]bool {
	notLabel := map[string]bool{}
	for name := range ignored.trivially {
		notLabel[name] = true
	}
	for name := range ignored.strongly {
		notLabel[name] = true
	}
	return notLabel
}

// labelNegatives implements NegativeLabellingTransformer followed by
// PositiveLabellingTransformer: every negated or aggregated relation
// reference is rewritten in place to a `@neglabel.` copy, then every
// non-ignored stratum of the program is copied wholesale, one stratum at a
// time, under that prefix (internal cross-references within the same
// stratum follow the rename; a relation's own negated/aggregated
// appearances were already rewritten). Stratification after adornment can
// only be trusted if every relation that might be called with a different
// binding still has an unadorned copy available, so the whole program is
// copied rather than just the literally-negated relations (ground
// truth: a MagicSet fixture with BaseOne/BaseTwo/A/B/C/R/D/Query negates
// only C and R but still produces @neglabel.A, @neglabel.B, @neglabel.D and
// @neglabel.Query alongside @neglabel.C/@neglabel.R).
func labelNegatives(t *tu.TranslationUnit, ignored *ignoredSets) bool {
	scc := analysis.SCCGraphOf(t)
	detail := analysis.RelationDetailCacheOf(t)
	notLabel := notLabelSet(ignored)

	toLabel := map[string]bool{}
	for _, c := range t.Program.Clauses {
		ast.Inspect(c, func(n ast.Node) bool {
			switch v := n.(type) {
			case *ast.Negation:
				name := v.Atom.Name.String()
				if !notLabel[name] {
					v.Atom.Name = ast.ParseQualifiedName("@neglabel." + name)
					toLabel[name] = true
				}
			case *ast.Aggregator:
				for _, lit := range v.Body {
					atom, ok := lit.(*ast.Atom)
					if ok && !notLabel[atom.Name.String()] {
						name := atom.Name.String()
						atom.Name = ast.ParseQualifiedName("@neglabel." + name)
						toLabel[name] = true
					}
				}
			}
			return true
		})
	}

	var newClauses []*ast.Clause
	for _, stratumIdx := range scc.TopologicalOrder() {
		members := scc.GetInternalRelations(stratumIdx)
		local := map[string]string{}
		for _, m := range members {
			if notLabel[m] {
				continue
			}
			toLabel[m] = true
			local[m] = "@neglabel." + m
		}
		for _, m := range members {
			newName, ok := local[m]
			if !ok {
				continue
			}
			for _, c := range t.Program.ClausesForRelation(ast.ParseQualifiedName(m)) {
				clone := c.CloneClause()
				clone.Head.Name = ast.ParseQualifiedName(newName)
				ast.Inspect(clone, func(n ast.Node) bool {
					if atom, ok := n.(*ast.Atom); ok {
						if rn, ok := local[atom.Name.String()]; ok {
							atom.Name = ast.ParseQualifiedName(rn)
						}
					}
					return true
				})
				newClauses = append(newClauses, clone)
			}
		}
	}
	if len(toLabel) == 0 {
		return false
	}

	var newRels []*ast.Relation
	for name := range toLabel {
		orig := detail.Relation(name)
		if orig == nil {
			continue
		}
		clone := orig.CloneRelation()
		clone.Name = ast.ParseQualifiedName("@neglabel." + name)
		newRels = append(newRels, clone)
	}
	t.Program.Relations = append(t.Program.Relations, newRels...)
	t.Program.Clauses = append(t.Program.Clauses, newClauses...)
	t.Invalidate()

	labelPositives(t, notLabel)
	return true
}

// labelPositives implements PositiveLabellingTransformer: every positive
// atom inside a negatively-labelled stratum's rules that still refers to
// an unignored, unlabelled relation is rewritten to a fresh
// `@poscopy_k.R` copy, and the copy's own rules (and its own stratum's
// dependency strata) are materialised so the copy is self-contained. Each
// dependency stratum gets one fresh copy per negatively-labelled stratum
// that reaches it, tracked by a running per-stratum counter.
func labelPositives(t *tu.TranslationUnit, notLabel map[string]bool) bool {
	scc := analysis.SCCGraphOf(t)
	prec := analysis.PrecedenceGraphOf(t)
	detail := analysis.RelationDetailCacheOf(t)

	neglabelledStratum := map[int]bool{}
	copyCount := map[int]int{}
	for idx := 0; idx < scc.GetNumberOfSCCs(); idx++ {
		negged := false
		for _, m := range scc.GetInternalRelations(idx) {
			if isNeglabelled(m) {
				negged = true
				break
			}
		}
		if negged {
			neglabelledStratum[idx] = true
		} else {
			copyCount[idx] = 0
		}
	}

	dependentStrata := map[int]map[int]bool{}
	for idx := 0; idx < scc.GetNumberOfSCCs(); idx++ {
		dependentStrata[idx] = map[int]bool{}
	}
	for _, r := range t.Program.Relations {
		s := scc.GetSCC(r.Name.String())
		for _, dep := range prec.Successors(r.Name.String()) {
			dependentStrata[s][scc.GetSCC(dep)] = true
		}
	}

	renameAtomsWith := func(c *ast.Clause, labelledNames map[string]string) {
		ast.Inspect(c, func(n ast.Node) bool {
			if atom, ok := n.(*ast.Atom); ok {
				if nn, ok := labelledNames[atom.Name.String()]; ok {
					atom.Name = ast.ParseQualifiedName(nn)
				}
			}
			return true
		})
	}
	labelledNamesFor := func(c *ast.Clause) map[string]string {
		labelledNames := map[string]string{}
		ast.Inspect(c, func(n ast.Node) bool {
			atom, ok := n.(*ast.Atom)
			if !ok {
				return true
			}
			name := atom.Name.String()
			if notLabel[name] || isNeglabelled(name) {
				return true
			}
			if _, ok := labelledNames[name]; ok {
				return true
			}
			relStratum := scc.GetSCC(name)
			k := copyCount[relStratum] + 1
			labelledNames[name] = "@poscopy_" + itoa(k) + "." + name
			return true
		})
		return labelledNames
	}

	changed := false
	order := scc.TopologicalOrder()
	pos := map[int]int{}
	for i, idx := range order {
		pos[idx] = i
	}

	var newClauses []*ast.Clause
	for _, stratumIdx := range order {
		if !neglabelledStratum[stratumIdx] {
			continue
		}
		for _, m := range scc.GetInternalRelations(stratumIdx) {
			clauses := t.Program.ClausesForRelation(ast.ParseQualifiedName(m))
			relsToCopy := map[string]bool{}
			for _, c := range clauses {
				for _, lit := range c.Body {
					atom, ok := lit.(*ast.Atom)
					if !ok {
						continue
					}
					name := atom.Name.String()
					if !notLabel[name] && !isNeglabelled(name) {
						relsToCopy[name] = true
					}
				}
			}
			if len(relsToCopy) == 0 {
				continue
			}
			labelledNames := map[string]string{}
			for name := range relsToCopy {
				relStratum := scc.GetSCC(name)
				k := copyCount[relStratum] + 1
				labelledNames[name] = "@poscopy_" + itoa(k) + "." + name
			}
			for _, c := range clauses {
				renameAtomsWith(c, labelledNames)
			}
			changed = true
		}

		for i := pos[stratumIdx] - 1; i >= 0; i-- {
			preIdx := order[i]
			if neglabelledStratum[preIdx] {
				continue
			}
			if !dependentStrata[preIdx][stratumIdx] {
				continue
			}
			for _, rel := range scc.GetInternalRelations(preIdx) {
				if notLabel[rel] {
					continue
				}
				for _, c := range t.Program.ClausesForRelation(ast.ParseQualifiedName(rel)) {
					labelledNames := labelledNamesFor(c)
					clone := c.CloneClause()
					renameAtomsWith(clone, labelledNames)
					newClauses = append(newClauses, clone)
					changed = true
				}
			}
			copyCount[preIdx]++
		}
	}
	t.Program.Clauses = append(t.Program.Clauses, newClauses...)

	var newRels []*ast.Relation
	for stratumIdx, count := range copyCount {
		for copyN := 1; copyN <= count; copyN++ {
			for _, m := range scc.GetInternalRelations(stratumIdx) {
				if notLabel[m] {
					continue
				}
				orig := detail.Relation(m)
				if orig == nil {
					continue
				}
				clone := orig.CloneRelation()
				clone.Name = ast.ParseQualifiedName("@poscopy_" + itoa(copyN) + "." + m)
				newRels = append(newRels, clone)
				changed = true
			}
		}
	}
	t.Program.Relations = append(t.Program.Relations, newRels...)

	if changed {
		t.Invalidate()
	}
	return changed
}

// ---- Adorn ----

type markerEntry struct {
	orig   ast.QualifiedName
	marker string
}

// adorn walks every rule reachable from an output relation's empty
// adornment marker, producing adorned relation copies `R.{bfbf…}`.
// It returns the set of adorned clauses' head-name -> (origin, marker) and
// leaves t.Program.Clauses/Relations updated in place with the adorned
// copies, replacing the unadorned originals that were actually adorned.
func adorn(t *tu.TranslationUnit, ignored *ignoredSets) map[string]markerEntry {
	io := analysis.IOTypeOf(t)
	detail := analysis.RelationDetailCacheOf(t)

	seen := map[string]bool{}
	var queue []workItemAlias
	for _, name := range io.OutputRelations() {
		key := name + "\x00"
		if !seen[key] {
			seen[key] = true
			queue = append(queue, workItemAlias{name: name, marker: ""})
		}
	}

	markerInfo := map[string]markerEntry{}
	adornedOrigins := map[string]bool{}
	var adornedClauses []*ast.Clause
	newRelations := map[string]*ast.Relation{}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		rel := detail.Relation(item.name)
		if rel == nil {
			continue
		}
		adornedName := adornedRelationName(item.name, item.marker)
		markerInfo[adornedName] = markerEntry{orig: rel.Name, marker: item.marker}

		if item.marker != "" {
			adorned := rel.CloneRelation()
			adorned.Name = ast.ParseQualifiedName(adornedName)
			newRelations[adornedName] = adorned
			adornedOrigins[item.name] = true
		}

		for _, c := range detail.Clauses(item.name) {
			bs := analysis.NewBindingStore()
			for i, arg := range c.Head.Args {
				if i < len(item.marker) && item.marker[i] == 'b' {
					if v, ok := arg.(*ast.Variable); ok {
						bs.BindVariable(v.Name)
					}
				}
			}
			for _, lit := range c.Body {
				bs.AddEqualityConstraint(lit)
			}
			bs.Close()

			clone := c.CloneClause()
			clone.Head.Name = ast.ParseQualifiedName(adornedName)

			for _, lit := range clone.Body {
				switch l := lit.(type) {
				case *ast.Atom:
					adornBodyAtom(t, l, ignored, bs, &queue, seen)
				case *ast.Negation:
					adornBodyAtom(t, l.Atom, ignored, bs, &queue, seen)
				case *ast.BinaryConstraint:
					bs.AddEqualityConstraint(l)
				}
				if atom, ok := lit.(*ast.Atom); ok {
					bs.AddPositiveAtom(atom)
				}
			}
			adornedClauses = append(adornedClauses, clone)
		}
	}

	if len(adornedOrigins) == 0 {
		return nil
	}

	var keptClauses []*ast.Clause
	for _, c := range t.Program.Clauses {
		if adornedOrigins[c.Head.Name.String()] {
			continue
		}
		keptClauses = append(keptClauses, c)
	}
	keptClauses = append(keptClauses, adornedClauses...)
	t.Program.Clauses = keptClauses

	var keptRelations []*ast.Relation
	for _, r := range t.Program.Relations {
		if adornedOrigins[r.Name.String()] {
			continue
		}
		keptRelations = append(keptRelations, r)
	}
	for _, r := range newRelations {
		keptRelations = append(keptRelations, r)
	}
	t.Program.Relations = keptRelations

	return markerInfo
}

func adornBodyAtom(t *tu.TranslationUnit, atom *ast.Atom, ignored *ignoredSets, bs *analysis.BindingStore, queue *[]workItemAlias, seen map[string]bool) {
	name := atom.Name.String()
	if ignored.weakly[name] {
		return
	}
	var marker strings.Builder
	for _, arg := range atom.Args {
		if bs.IsBound(arg) {
			marker.WriteByte('b')
		} else {
			marker.WriteByte('f')
		}
	}
	m := marker.String()
	atom.Name = ast.ParseQualifiedName(adornedRelationName(name, m))
	key := name + "\x00" + m
	if !seen[key] {
		seen[key] = true
		*queue = append(*queue, workItemAlias{name: name, marker: m})
	}
}

type workItemAlias struct {
	name   string
	marker string
}

func adornedRelationName(name, marker string) string {
	if marker == "" {
		return name
	}
	return name + ".{" + marker + "}"
}

// ---- MagicCore ----

func magicCore(t *tu.TranslationUnit, markerInfo map[string]markerEntry) bool {
	if len(markerInfo) == 0 {
		return false
	}
	detail := analysis.RelationDetailCacheOf(t)
	changed := false
	magicDeclared := map[string]bool{}
	var newClauses []*ast.Clause

	for _, c := range t.Program.Clauses {
		entry, ok := markerInfo[c.Head.Name.String()]
		if !ok {
			continue
		}
		origRel := detail.Relation(entry.orig.String())
		if origRel == nil {
			continue
		}

		var magicHead *ast.Atom
		magicName := "@magic." + adornedRelationName(entry.orig.String(), entry.marker)
		if entry.marker != "" {
			boundArgs := extractBound(c.Head.Args, entry.marker)
			magicHead = &ast.Atom{Name: ast.ParseQualifiedName(magicName), Args: cloneArgSlice(boundArgs), P: c.P}
			if !magicDeclared[magicName] {
				magicDeclared[magicName] = true
				t.Program.Relations = append(t.Program.Relations, magicRelationFor(origRel, entry.marker, magicName))
				changed = true
			}
		}

		origBody := append([]ast.Literal(nil), c.Body...)
		for idx, lit := range origBody {
			atom, ok := lit.(*ast.Atom)
			if !ok {
				continue
			}
			callee, ok := markerInfo[atom.Name.String()]
			if !ok {
				continue
			}
			if callee.marker == "" {
				continue
			}
			calleeRel := detail.Relation(callee.orig.String())
			if calleeRel == nil {
				continue
			}
			boundArgs := extractBound(atom.Args, callee.marker)
			calleeMagicName := "@magic." + adornedRelationName(callee.orig.String(), callee.marker)
			if !magicDeclared[calleeMagicName] {
				magicDeclared[calleeMagicName] = true
				t.Program.Relations = append(t.Program.Relations, magicRelationFor(calleeRel, callee.marker, calleeMagicName))
			}

			needed := map[string]bool{}
			for _, a := range boundArgs {
				for _, v := range variablesIn(a) {
					needed[v] = true
				}
			}
			relevant := relevantPreceding(origBody[:idx], needed)

			ruleBody := make([]ast.Literal, 0, 1+len(relevant))
			if magicHead != nil {
				ruleBody = append(ruleBody, magicHead.CloneAtom())
			}
			ruleBody = append(ruleBody, relevant...)

			newClauses = append(newClauses, &ast.Clause{
				Head: &ast.Atom{Name: ast.ParseQualifiedName(calleeMagicName), Args: cloneArgSlice(boundArgs), P: atom.P},
				Body: ruleBody,
				P:    atom.P,
			})
			changed = true
		}

		if magicHead != nil {
			c.Body = append([]ast.Literal{magicHead}, c.Body...)
			changed = true
		}
	}

	t.Program.Clauses = append(t.Program.Clauses, newClauses...)
	return changed
}

func magicRelationFor(rel *ast.Relation, marker, magicName string) *ast.Relation {
	attrs := make([]ast.Attribute, 0, len(marker))
	for i, a := range rel.Attributes {
		if i < len(marker) && marker[i] == 'b' {
			attrs = append(attrs, a)
		}
	}
	out := ast.NewRelation(ast.ParseQualifiedName(magicName), attrs, rel.P)
	return out
}

func extractBound(args []ast.Argument, marker string) []ast.Argument {
	var out []ast.Argument
	for i, a := range args {
		if i < len(marker) && marker[i] == 'b' {
			out = append(out, a)
		}
	}
	return out
}

func cloneArgSlice(args []ast.Argument) []ast.Argument {
	out := make([]ast.Argument, len(args))
	for i, a := range args {
		out[i] = a.Clone().(ast.Argument)
	}
	return out
}

func variablesIn(a ast.Node) []string {
	var out []string
	ast.Inspect(a, func(n ast.Node) bool {
		if v, ok := n.(*ast.Variable); ok {
			out = append(out, v.Name)
		}
		return true
	})
	return out
}

// relevantPreceding returns, in original order, every literal of preceding
// whose variables intersect the closure of needed under the remaining
// literals' shared variables — only literals relevant to the magic head
// under the binding closure of equality constraints survive the filter.
func relevantPreceding(preceding []ast.Literal, needed map[string]bool) []ast.Literal {
	included := make([]bool, len(preceding))
	for i := 0; i < len(preceding); i++ {
		changedPass := false
		for idx, lit := range preceding {
			if included[idx] {
				continue
			}
			vars := variablesIn(lit)
			touches := false
			for _, v := range vars {
				if needed[v] {
					touches = true
					break
				}
			}
			if touches {
				included[idx] = true
				changedPass = true
				for _, v := range vars {
					needed[v] = true
				}
			}
		}
		if !changedPass {
			break
		}
	}
	var out []ast.Literal
	for idx, lit := range preceding {
		if included[idx] {
			out = append(out, lit)
		}
	}
	return out
}
