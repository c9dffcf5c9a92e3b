package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/modelop/sapling"
	"github.com/modelop/sapling/feature"
	"github.com/modelop/sapling/feature/yaml"
	"github.com/modelop/sapling/stream"
	csvstream "github.com/modelop/sapling/stream/csv"
	"github.com/modelop/sapling/stream/mongostream"
	"github.com/modelop/sapling/stream/sqlstream"
	"github.com/modelop/sapling/stream/sqlstream/pgadapter"
	"github.com/modelop/sapling/stream/sqlstream/sqlite3adapter"
	"github.com/modelop/sapling/tree/json"
	"github.com/modelop/sapling/tree/pmml"
	"github.com/modelop/sapling/tree/redisstore"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
	redis "gopkg.in/redis.v5"
)

type growCmdConfig struct {
	*rootCmdConfig
	metadataInput   string
	csvInput        string
	sqlite3Input    string
	postgresInput   string
	mongoInput      string
	table           string
	collection      string
	output          string
	format          string
	redisAddr       string
	redisKey        string
	seed            int64
	classification  string
	featureMaturity int
	splitMaturity   int
	trialsToKeep    int
	worldsToSplit   int
	treeDepth       int
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a classification tree from an event stream",
		Long:  `Grow a classification tree online, one event at a time, from a CSV file or a database table, and write it out as JSON or PMML`,
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
			l.Logf("Fields from metadata read")
			events, closer, err := config.openStream(ctx, fields)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			if closer != nil {
				defer closer.Close()
			}
			driver, err := sapling.New(fields, config.engineConfig(), config.rng())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			l.Logf("Growing tree over event stream...")
			var count int
			err = stream.ForEach(ctx, events, func(s feature.Sample) error {
				count++
				return driver.Update(s)
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			l.Logf("Tree grown over %d events", count)
			if err = config.writeTree(ctx, driver, fields); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with the mining schema of the event stream (required)")
	cmd.Flags().StringVarP(&(config.csvInput), "input", "i", "", "path to a CSV file with the event stream")
	cmd.Flags().StringVar(&(config.sqlite3Input), "sqlite3", "", "path to a SQLite3 database file with the event stream")
	cmd.Flags().StringVar(&(config.postgresInput), "postgres", "", "connection string to a PostgreSQL database with the event stream")
	cmd.Flags().StringVar(&(config.mongoInput), "mongodb", "", "URL to a MongoDB database with the event stream")
	cmd.Flags().StringVar(&(config.table), "table", "events", "name of the table with the event stream on SQL databases")
	cmd.Flags().StringVar(&(config.collection), "collection", "events", "name of the collection with the event stream on MongoDB databases")
	cmd.Flags().StringVarP(&(config.output), "output", "o", "", "path to a file to write the grown tree to (defaults to STDOUT)")
	cmd.Flags().StringVarP(&(config.format), "format", "f", "json", "output format for the grown tree: json, pmml or pmml-ruleset")
	cmd.Flags().StringVar(&(config.redisAddr), "redis", "", "address of a redis server to also store the grown tree on")
	cmd.Flags().StringVar(&(config.redisKey), "redis-key", "default", "segment id under which to store the tree on redis")
	cmd.Flags().Int64Var(&(config.seed), "seed", 0, "seed for the candidate-split sampler (0 seeds from the clock)")
	cmd.Flags().StringVarP(&(config.classification), "classification", "c", "", "name of the field to predict (defaults to the first predicted field on the metadata)")
	cmd.Flags().IntVar(&(config.featureMaturity), "feature-maturity", 0, "number of valid values a field must observe before candidate splits are sampled from it")
	cmd.Flags().IntVar(&(config.splitMaturity), "split-maturity", 0, "number of events a candidate split must count before it is trusted")
	cmd.Flags().IntVar(&(config.trialsToKeep), "trials-to-keep", 0, "number of candidate splits kept per branch")
	cmd.Flags().IntVar(&(config.worldsToSplit), "worlds-to-split", 0, "number of child hypotheses kept per branch")
	cmd.Flags().IntVar(&(config.treeDepth), "tree-depth", 0, "depth limit of the grown tree")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	inputs := 0
	for _, in := range []string{gcc.csvInput, gcc.sqlite3Input, gcc.postgresInput, gcc.mongoInput} {
		if in != "" {
			inputs++
		}
	}
	if inputs != 1 {
		return fmt.Errorf("exactly one of the input, sqlite3, postgres or mongodb flags must be set")
	}
	switch gcc.format {
	case "json", "pmml", "pmml-ruleset":
	default:
		return fmt.Errorf("invalid format %q: must be json, pmml or pmml-ruleset", gcc.format)
	}
	return nil
}

func (gcc *growCmdConfig) engineConfig() *sapling.Config {
	cfg := sapling.DefaultConfig()
	cfg.Classification = gcc.classification
	if gcc.featureMaturity > 0 {
		cfg.FeatureMaturityThreshold = gcc.featureMaturity
	}
	if gcc.splitMaturity > 0 {
		cfg.SplitMaturityThreshold = gcc.splitMaturity
	}
	if gcc.trialsToKeep > 0 {
		cfg.TrialsToKeep = gcc.trialsToKeep
	}
	if gcc.worldsToSplit > 0 {
		cfg.WorldsToSplit = gcc.worldsToSplit
	}
	if gcc.treeDepth > 0 {
		cfg.TreeDepth = gcc.treeDepth
	}
	return cfg
}

func (gcc *growCmdConfig) rng() *rand.Rand {
	if gcc.seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(gcc.seed))
}

func (gcc *growCmdConfig) openStream(ctx context.Context, fields []*feature.Field) (stream.Stream, io.Closer, error) {
	switch {
	case gcc.csvInput != "":
		f, err := os.Open(gcc.csvInput)
		if err != nil {
			return nil, nil, fmt.Errorf("opening event stream at %s: %v", gcc.csvInput, err)
		}
		s, err := csvstream.New(f, fields)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return s, f, nil
	case gcc.sqlite3Input != "":
		db, err := sqlite3adapter.Open(gcc.sqlite3Input)
		if err != nil {
			return nil, nil, err
		}
		return sqlstream.New(db, sqlite3adapter.New(), gcc.table, fields), db, nil
	case gcc.postgresInput != "":
		db, err := pgadapter.Open(gcc.postgresInput)
		if err != nil {
			return nil, nil, err
		}
		return sqlstream.New(db, pgadapter.New(), gcc.table, fields), db, nil
	}
	session, err := mgo.Dial(gcc.mongoInput)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongodb at %s: %v", gcc.mongoInput, err)
	}
	return mongostream.New(session, gcc.collection, fields), closerFunc(func() error {
		session.Close()
		return nil
	}), nil
}

func (gcc *growCmdConfig) writeTree(ctx context.Context, driver *sapling.Driver, fields []*feature.Field) error {
	t := driver.Tree()
	var out io.Writer = os.Stdout
	if gcc.output != "" {
		f, err := os.Create(gcc.output)
		if err != nil {
			return fmt.Errorf("creating output file %s: %v", gcc.output, err)
		}
		defer f.Close()
		out = f
	}
	var err error
	switch gcc.format {
	case "json":
		err = json.WriteTree(t, out)
	case "pmml":
		err = pmml.WriteTreeModel(t, fields, out)
	case "pmml-ruleset":
		err = pmml.WriteRuleSetModel(t.RuleSet(), fields, out)
	}
	if err != nil {
		return err
	}
	if gcc.redisAddr == "" {
		return nil
	}
	store := redisstore.New(redis.NewClient(&redis.Options{Addr: gcc.redisAddr}), "sapling:trees", fields)
	defer store.Close()
	return store.Save(ctx, gcc.redisKey, t)
}

type closerFunc func() error

func (cf closerFunc) Close() error {
	return cf()
}
