package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelop/sapling/feature/yaml"
	csvstream "github.com/modelop/sapling/stream/csv"
	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	metadataInput string
	treeInput     string
	csvInput      string
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test a grown tree against a labeled event stream",
		Long:  `Load a grown tree and measure its classification success rate over a labeled CSV event stream`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			l := progressLog(config.verbose)
			ctx := context.Background()
			l.Logf("Reading fields from metadata at %s...", config.metadataInput)
			fields, err := yaml.ReadFieldsFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			t, err := loadTree(config.treeInput, fields)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			f, err := os.Open(config.csvInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, fmt.Errorf("opening event stream at %s: %v", config.csvInput, err))
				os.Exit(4)
			}
			defer f.Close()
			events, err := csvstream.New(f, fields)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			l.Logf("Testing tree against event stream...")
			rate, unscored, err := t.Test(ctx, events)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			fmt.Printf("Success rate: %f\n", rate)
			if unscored > 0 {
				fmt.Printf("Samples without score: %d\n", unscored)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with the mining schema of the event stream (required)")
	cmd.Flags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file from which the tree to test will be read and parsed as JSON (required)")
	cmd.Flags().StringVarP(&(config.csvInput), "input", "i", "", "path to a CSV file with the labeled samples to test against (required)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if tcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if tcc.csvInput == "" {
		return fmt.Errorf("required input flag was not set")
	}
	return nil
}
