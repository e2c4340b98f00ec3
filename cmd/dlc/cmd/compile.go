package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datalogc/dlc/config"
	"github.com/datalogc/dlc/fixture"
	"github.com/datalogc/dlc/pipeline"
	"github.com/datalogc/dlc/tu"
)

var (
	programFile    string
	showWhat       string
	magicTransform string
	provenance     string
	disableList    string
	debugReport    string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Run the transformer pipeline over a fixture and lower it to RAM",
	Long: `compile loads a YAML AST fixture (see fixture.Load), runs the full
transformer pipeline, and by default prints the canonical RAM program text
dump. Pass --show debug-report to print the accumulated
DebugReporter JSON document instead.

Examples:
  dlc compile --program prog.yaml
  dlc compile --program prog.yaml --provenance explain
  dlc compile --program prog.yaml --magic-transform '*' --show debug-report`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVar(&programFile, "program", "", "path to a YAML AST fixture (required)")
	compileCmd.Flags().StringVar(&showWhat, "show", "transformed-ram", "what to print: transformed-ram, debug-report")
	compileCmd.Flags().StringVar(&magicTransform, "magic-transform", "", "comma list of relations to Magic-Set transform, or '*'")
	compileCmd.Flags().StringVar(&provenance, "provenance", "", "provenance mode: explain, explore, or empty to disable")
	compileCmd.Flags().StringVar(&disableList, "disable-transformers", "", "comma list of transformer names to disable")
	compileCmd.Flags().StringVar(&debugReport, "debug-report", "", "path placeholder enabling the DebugReporter wrapper")
	_ = compileCmd.MarkFlagRequired("program")
}

func runCompile(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	data, err := os.ReadFile(programFile)
	if err != nil {
		return fmt.Errorf("reading program fixture: %w", err)
	}
	program, err := fixture.Load(data)
	if err != nil {
		return fmt.Errorf("loading program fixture: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	t := tu.New(program, programFile, cfg)
	root := pipeline.Root(cfg, logger)
	strategy := pipeline.StrategyFor(cfg)

	result := pipeline.Run(t, root, strategy)
	logger.Info("pipeline finished", zap.String("summary", result.Summary()))

	if result.Aborted {
		fmt.Fprintln(os.Stderr, t.Report.String())
		return fmt.Errorf("compile: %s", result.Summary())
	}

	switch showWhat {
	case "debug-report":
		doc, err := t.DebugReportJSON()
		if err != nil {
			return err
		}
		fmt.Println(doc)
	default:
		fmt.Print(result.RAM.Dump())
	}
	if t.Report.NumWarnings() > 0 {
		fmt.Fprintln(os.Stderr, t.Report.String())
	}
	return nil
}

func loadConfig() (*config.Store, error) {
	if configFile == "" {
		return config.NewStore(), nil
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := config.LoadYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// applyFlagOverrides locks any of the pipeline-affecting flags the user
// passed explicitly, command-line values taking precedence over the
// config file the way config.Store.SetLocked documents.
func applyFlagOverrides(cfg *config.Store) {
	if magicTransform != "" {
		cfg.SetLocked(config.KeyMagicTransform, magicTransform)
	}
	if provenance != "" {
		cfg.SetLocked(config.KeyProvenance, provenance)
	}
	if disableList != "" {
		cfg.SetLocked(config.KeyDisableTransformers, disableList)
	}
	if debugReport != "" {
		cfg.SetLocked(config.KeyDebugReport, debugReport)
	}
}
