// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	refArg := "REF is a candidate ID or name"
	return &cli.App{
		Name:  "talentgraph",
		Usage: "Résumé knowledge graph with hybrid retrieval and ATS scoring",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file (default ~/.config/talentgraph/config.yaml)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory, overrides the configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest résumé text files",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of documents ingested concurrently (0 uses the configured value)",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Answer a question about the candidate pool",
				ArgsUsage: "TEXT...",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of segments retrieved (0 uses the configured value)",
					},
					&cli.BoolFlag{
						Name:  "show-context",
						Usage: "Print the merged context sent to the model",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List candidates, most recently ingested first",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "skill",
						Usage: "Only candidates with this skill",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only candidates in this index status (indexed, index_incomplete)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of candidates listed",
					},
				},
			},
			{
				Name:        "show",
				Usage:       "Show a candidate with its skills, education and projects",
				ArgsUsage:   "REF",
				Description: refArg,
				Action:      showCommand,
			},
			{
				Name:        "ats",
				Usage:       "Score a candidate against a job description",
				ArgsUsage:   "REF",
				Description: refArg + ". With --resume the file is scored without touching the database.",
				Action:      atsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "job",
						Aliases:  []string{"j"},
						Usage:    "Path to the job description",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "resume",
						Usage: "Score this résumé text file instead of a stored candidate",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the result as JSON",
					},
				},
			},
			{
				Name:   "rank",
				Usage:  "Rank every candidate against a job description",
				Action: rankCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "job",
						Aliases:  []string{"j"},
						Usage:    "Path to the job description",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of candidates shown",
						Value: 10,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed candidates whose index entries are incomplete",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Clear the index and re-embed every candidate, e.g. after changing the embedding model",
					},
				},
			},
			{
				Name:        "connections",
				Usage:       "Show candidates related through institutions, technologies and skills",
				ArgsUsage:   "REF",
				Description: refArg,
				Action:      connectionsCommand,
			},
			{
				Name:   "export-neo4j",
				Usage:  "Copy the knowledge graph into a Neo4j database",
				Action: exportNeo4jCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "uri",
						Usage:    "Neo4j connection URI, e.g. neo4j://localhost:7687",
						EnvVars:  []string{"NEO4J_URI"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "user",
						Usage:   "Neo4j user name",
						EnvVars: []string{"NEO4J_USER"},
						Value:   "neo4j",
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Neo4j password",
						EnvVars: []string{"NEO4J_PASSWORD"},
					},
					&cli.StringFlag{
						Name:    "database",
						Usage:   "Neo4j database name",
						EnvVars: []string{"NEO4J_DATABASE"},
						Value:   "neo4j",
					},
				},
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Write the default configuration file",
						Action: configInitCommand,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing file",
							},
						},
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
