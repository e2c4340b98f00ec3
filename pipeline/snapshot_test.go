package pipeline_test

import (
	"testing"

	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/pipeline"
	"github.com/datalogc/dlc/tu"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

// TestLowerTransitiveClosureMatchesRAMDumpSnapshot snapshots the canonical
// RAM text dump for the small transitive-closure program, catching any
// accidental change to the dump format or the lowering shape.
func TestLowerTransitiveClosureMatchesRAMDumpSnapshot(t *testing.T) {
	cfg := config.NewStore()
	u := tu.New(transitiveClosureProgram(), "snapshot", cfg)

	result := pipeline.Run(u, pipeline.Root(cfg, nil), pipeline.StrategyFor(cfg))
	require.False(t, result.Aborted, "unexpected abort: %s", result.Summary())

	snaps.MatchSnapshot(t, result.RAM.Dump())
}
