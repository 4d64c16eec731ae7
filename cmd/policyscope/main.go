// Command policyscope runs the household microsimulation explainer: a web
// form (serve) or a one-shot CLI calculation (calc), both driving the same
// pipeline of household assembly, engine calculation, trace graphing and
// LLM explanation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"policyscope/internal/config"
	"policyscope/internal/explain"
	"policyscope/internal/household"
	"policyscope/internal/logging"
	"policyscope/internal/pipeline"
	"policyscope/internal/server"
	"policyscope/internal/simulation"
	"policyscope/internal/tracegraph"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "policyscope",
	Short: "policyscope - household microsimulation results, explained",
	Long: `policyscope collects a household's demographic and financial attributes,
runs them through a tax/benefit microsimulation engine, and asks a language
model to explain the computation trace in plain terms.

Run "policyscope serve" for the web form or "policyscope calc" for a
one-shot calculation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("%s %s starting", cfg.Name, cfg.Version)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// serveCmd starts the HTTP presentation layer.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculation form over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := buildRunner()
		if err != nil {
			return err
		}

		srv, err := server.New(cfg, runner)
		if err != nil {
			return fmt.Errorf("failed to build server: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

// calc flags
var (
	calcAge      int
	calcIncome   float64
	calcMarried  bool
	calcChildren int
	calcState    string
	calcVariable string
	calcPeriod   string
	calcGraphOut string
	calcTrace    bool
)

// calcCmd runs a single submission from flags.
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run one calculation and print the explained result",
	Example: `  policyscope calc --age 40 --income 20000 --children 2 --state CA --variable snap
  policyscope calc --variable eitc --married --graph-out eitc.dot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := household.Inputs{
			Age:         calcAge,
			Income:      calcIncome,
			Married:     calcMarried,
			NumChildren: calcChildren,
			State:       calcState,
			Variable:    calcVariable,
			Period:      calcPeriod,
		}
		if err := in.Validate(); err != nil {
			return err
		}

		runner, err := buildRunner()
		if err != nil {
			return err
		}

		outcome, err := runner.Run(cmd.Context(), in)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n\n", outcome.Variable, outcome.Formatted)

		rendered, err := glamour.Render("## Explanation\n\n"+outcome.Explanation, "auto")
		if err != nil {
			// Plain text is an acceptable fallback for odd terminals.
			fmt.Printf("Explanation\n\n%s\n", outcome.Explanation)
		} else {
			fmt.Print(rendered)
		}

		if calcGraphOut != "" && outcome.GraphDOT != "" {
			if err := os.WriteFile(calcGraphOut, []byte(outcome.GraphDOT), 0644); err != nil {
				return fmt.Errorf("failed to write graph: %w", err)
			}
			fmt.Printf("Computation graph written to %s\n", calcGraphOut)
		}

		if calcTrace {
			fmt.Printf("\nComputation Log\n\n%s\n", outcome.Trace)
		}
		return nil
	},
}

// buildRunner assembles the pipeline from config.
func buildRunner() (*pipeline.Runner, error) {
	engine := simulation.NewHTTPEngine(simulation.EngineConfig{
		BaseURL: cfg.Simulation.BaseURL,
		APIKey:  cfg.Simulation.APIKey,
		Timeout: cfg.GetSimulationTimeout(),
	})

	client, err := explain.NewClient(explain.ClientConfig{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.GetLLMTimeout(),
	})
	if err != nil {
		return nil, err
	}

	maxDepth := cfg.Graph.MaxDepth
	if maxDepth <= 0 {
		maxDepth = tracegraph.DefaultMaxDepth
	}

	return &pipeline.Runner{
		Engine:       engine,
		Requester:    explain.NewRequester(client),
		GraphEnabled: cfg.Graph.Enabled,
		MaxDepth:     maxDepth,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "policyscope.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	calcCmd.Flags().IntVar(&calcAge, "age", 40, "your age")
	calcCmd.Flags().Float64Var(&calcIncome, "income", 20000, "your employment income")
	calcCmd.Flags().BoolVar(&calcMarried, "married", false, "are you married")
	calcCmd.Flags().IntVar(&calcChildren, "children", 0, "number of children")
	calcCmd.Flags().StringVar(&calcState, "state", "CA", "state code")
	calcCmd.Flags().StringVar(&calcVariable, "variable", "snap", "variable to analyze")
	calcCmd.Flags().StringVar(&calcPeriod, "period", "2023", "period (e.g. a year)")
	calcCmd.Flags().StringVar(&calcGraphOut, "graph-out", "", "write the computation graph as DOT to this file")
	calcCmd.Flags().BoolVar(&calcTrace, "trace", false, "print the raw computation log")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(calcCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
