package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/feature/yaml"
	"github.com/modelop/sapling/stream"
	csvstream "github.com/modelop/sapling/stream/csv"
	"github.com/modelop/sapling/tree"
	"github.com/modelop/sapling/tree/json"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	metadataInput string
	treeInput     string
	csvInput      string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score samples with a grown tree",
		Long:  `Load a grown tree and score every sample on a CSV event stream with it`,
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
			err = stream.ForEach(ctx, events, func(s feature.Sample) error {
				score, err := t.Classify(s)
				if err != nil {
					if err != tree.ErrNoScore {
						return err
					}
					score = "?"
				}
				fmt.Println(score)
				return nil
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with the mining schema of the event stream (required)")
	cmd.Flags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file from which the tree to use will be read and parsed as JSON (required)")
	cmd.Flags().StringVarP(&(config.csvInput), "input", "i", "", "path to a CSV file with the samples to score (required)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if pcc.csvInput == "" {
		return fmt.Errorf("required input flag was not set")
	}
	return nil
}

func loadTree(filepath string, fields []*feature.Field) (*tree.Tree, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading tree in JSON from %s: %v", filepath, err)
	}
	defer f.Close()
	t, err := json.ReadTree(f, fields)
	if err != nil {
		err = fmt.Errorf("parsing tree in JSON from %s: %v", filepath, err)
	}
	return t, err
}
