package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/talentgraph"
	"github.com/poiesic/talentgraph/ai"
	"github.com/poiesic/talentgraph/ats"
	"github.com/poiesic/talentgraph/config"
	"github.com/poiesic/talentgraph/core"
	"github.com/poiesic/talentgraph/ingestion"
	"github.com/poiesic/talentgraph/reindex"
	"github.com/poiesic/talentgraph/retrieval"
	"github.com/poiesic/talentgraph/storage"
	"github.com/poiesic/talentgraph/storage/neo4j"
)

func configPath(c *cli.Context) (string, error) {
	if path := c.String("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path, err := configPath(c)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if db := c.String("db"); db != "" {
		cfg.Database.Path = db
	}
	return cfg, nil
}

func openDatabase(c *cli.Context) (*talentgraph.Database, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	aiConfig := ai.NewConfig(cfg.AIConfigOptions()...)
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := talentgraph.NewDatabase(cfg.Database.Path,
		talentgraph.WithAIConfig(aiConfig),
		talentgraph.WithDimensions(cfg.Database.Dimensions),
		talentgraph.WithATSConfig(cfg.ATS),
		talentgraph.WithCircuitBreaker(ai.DefaultBreakerConfig()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one file is required")
	}

	docs := make([]ingestion.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, ingestion.Document{Content: content, Ref: path})
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := cfg.IngestionOptions()
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}
	coord, err := db.NewCoordinator(opts...)
	if err != nil {
		return err
	}
	defer coord.Release()

	w := c.App.Writer
	failed := 0
	for _, outcome := range coord.IngestBatch(c.Context, docs) {
		switch {
		case errors.Is(outcome.Err, ingestion.ErrBatchAborted):
			failed++
			fmt.Fprintf(w, "%s: skipped, batch aborted on configuration error\n", outcome.Ref)
		case errors.Is(outcome.Err, core.ErrDuplicateDocument):
			fmt.Fprintf(w, "%s: duplicate of candidate %d\n", outcome.Ref, outcome.Result.CandidateID)
		case outcome.Result != nil && outcome.Result.Status == core.StatusIndexIncomplete:
			failed++
			fmt.Fprintf(w, "%s: stored as candidate %d, indexing incomplete: %v\n",
				outcome.Ref, outcome.Result.CandidateID, outcome.Err)
		case outcome.Err != nil:
			failed++
			stage := "unknown"
			if s, ok := core.FailedStage(outcome.Err); ok {
				stage = string(s)
			}
			fmt.Fprintf(w, "%s: failed at %s stage: %v\n", outcome.Ref, stage, outcome.Err)
		default:
			fmt.Fprintf(w, "%s: ingested as candidate %d (%d segments)\n",
				outcome.Ref, outcome.Result.CandidateID, outcome.Result.Segments)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("query text is required")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := cfg.RetrievalOptions()
	if k := c.Int("top-k"); k > 0 {
		opts = append(opts, retrieval.WithTopK(k))
	}
	retriever, err := db.NewRetriever(opts...)
	if err != nil {
		return err
	}

	answer, err := retriever.Query(c.Context, query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	w := c.App.Writer
	if c.Bool("show-context") && answer.Context != "" {
		fmt.Fprintf(w, "--- context ---\n%s\n--- end context ---\n\n", answer.Context)
	}
	fmt.Fprintln(w, answer.Text)
	if len(answer.Candidates) == 0 {
		return nil
	}

	sources := make([]string, 0, len(answer.Candidates))
	for _, id := range answer.Candidates {
		record, err := db.GraphStore().GetCandidate(c.Context, id)
		if err != nil {
			return err
		}
		sources = append(sources, fmt.Sprintf("%s (%d)", record.Name, id))
	}
	fmt.Fprintf(w, "\nSources: %s\n", strings.Join(sources, ", "))
	return nil
}

func listCommand(c *cli.Context) error {
	filter := storage.CandidateFilter{
		Skill: c.String("skill"),
		Limit: c.Int("limit"),
	}
	if s := c.String("status"); s != "" {
		status, ok := core.ParseCandidateStatus(s)
		if !ok {
			return fmt.Errorf("invalid status %q: must be indexed or index_incomplete", s)
		}
		filter.Status = status
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	summaries, err := db.GraphStore().ListCandidates(c.Context, filter)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No candidates found")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%-20d  %-28s  %-28s  %-16s  %2d skills  %s\n",
			s.Id, s.Name, s.Title, s.Status, s.SkillCount, s.IngestedAt.Local().Format(time.DateTime))
	}
	return nil
}

func resolveArg(c *cli.Context, db *talentgraph.Database) (*core.CandidateRecord, error) {
	if c.NArg() != 1 {
		return nil, errors.New("exactly one candidate ID or name is required")
	}
	record, err := db.Resolve(c.Context, c.Args().First())
	var ambiguous *storage.AmbiguousNameError
	switch {
	case errors.As(err, &ambiguous):
		lines := make([]string, len(ambiguous.Matches))
		for i, m := range ambiguous.Matches {
			lines[i] = fmt.Sprintf("  %d  %s  %s", m.Id, m.Name, m.IngestedAt.Local().Format(time.DateTime))
		}
		return nil, fmt.Errorf("%q matches %d candidates, use an ID:\n%s",
			ambiguous.Name, len(ambiguous.Matches), strings.Join(lines, "\n"))
	case errors.Is(err, core.ErrNotFound):
		return nil, fmt.Errorf("no candidate matches %q", c.Args().First())
	}
	return record, err
}

func showCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := resolveArg(c, db)
	if err != nil {
		return err
	}
	printRecord(c.App.Writer, record)
	return nil
}

func printRecord(w io.Writer, r *core.CandidateRecord) {
	fmt.Fprintf(w, "%s (%d)\n", r.Name, r.Id)
	if r.Title != "" {
		fmt.Fprintf(w, "Title:     %s\n", r.Title)
	}
	fmt.Fprintf(w, "Document:  %s\n", r.DocumentRef)
	fmt.Fprintf(w, "Status:    %s, %d segments\n", r.Status, r.SegmentCount)
	fmt.Fprintf(w, "Ingested:  %s\n", r.IngestedAt.Local().Format(time.DateTime))
	if len(r.SkillNames) > 0 {
		fmt.Fprintf(w, "Skills:    %s\n", strings.Join(r.SkillNames, ", "))
	}
	if len(r.EducationDetails) > 0 {
		fmt.Fprintln(w, "Education:")
		for _, e := range r.EducationDetails {
			line := fmt.Sprintf("  %s, %s", orDash(e.Degree), e.Institution)
			if e.Year > 0 {
				line += fmt.Sprintf(" (%d)", e.Year)
			}
			fmt.Fprintln(w, line)
		}
	}
	if len(r.ProjectDetails) > 0 {
		fmt.Fprintln(w, "Projects:")
		for _, p := range r.ProjectDetails {
			fmt.Fprintf(w, "  %s", p.Name)
			if p.Role != "" {
				fmt.Fprintf(w, " as %s", p.Role)
			}
			if len(p.TechnologyNames) > 0 {
				fmt.Fprintf(w, " [%s]", strings.Join(p.TechnologyNames, ", "))
			}
			fmt.Fprintln(w)
			if p.Description != "" {
				fmt.Fprintf(w, "    %s\n", p.Description)
			}
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func atsCommand(c *cli.Context) error {
	jd, err := os.ReadFile(c.String("job"))
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	if resume := c.String("resume"); resume != "" {
		text, err := os.ReadFile(resume)
		if err != nil {
			return fmt.Errorf("failed to read résumé: %w", err)
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		scorer, err := ats.NewScorer(cfg.ATS)
		if err != nil {
			return err
		}
		result := scorer.Score(string(jd), ats.Candidate{Text: string(text)})
		return printResult(c.App.Writer, filepath.Base(resume), result, c.Bool("json"))
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := resolveArg(c, db)
	if err != nil {
		return err
	}
	score, err := db.ScoreCandidate(c.Context, string(jd), strconv.FormatUint(uint64(record.Id), 10))
	if err != nil {
		return err
	}
	return printResult(c.App.Writer, record.Name, score.Result, c.Bool("json"))
}

func printResult(w io.Writer, name string, r *ats.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Fprintf(w, "%s: ATS score %.1f (%s)\n", name, r.Score, r.Band())
	fmt.Fprintf(w, "Keyword match rate: %.1f%%\n", r.KeywordMatchRate)
	if r.SkillOverlap > 0 {
		fmt.Fprintf(w, "Skill overlap:      %.1f%%\n", r.SkillOverlap)
	}
	fmt.Fprintf(w, "Matching: %s\n", orDash(strings.Join(r.MatchingKeywords, ", ")))
	fmt.Fprintf(w, "Missing:  %s\n", orDash(strings.Join(r.MissingKeywords, ", ")))
	fmt.Fprintln(w, "Recommendations:")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
	return nil
}

func rankCommand(c *cli.Context) error {
	jd, err := os.ReadFile(c.String("job"))
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ranked, err := db.RankCandidates(c.Context, string(jd), c.Int("limit"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No candidates found")
		return nil
	}
	for i, s := range ranked {
		fmt.Fprintf(w, "%3d. %-28s  %5.1f  %-6s  missing: %s\n",
			i+1, s.Candidate.Name, s.Result.Score, s.Result.Band(), orDash(strings.Join(s.Result.MissingKeywords, ", ")))
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	mode := reindex.ModeIncomplete
	if c.Bool("full") {
		mode = reindex.ModeFull
	}

	reindexer, err := db.NewReindexer(cfg.ReindexJobConfig(), os.Stderr)
	if err != nil {
		return err
	}
	report, err := reindexer.Run(c.Context, mode)
	if report != nil {
		fmt.Fprintf(c.App.Writer, "%s reindex: %d processed, %d indexed, %d failed\n",
			report.Mode, report.Processed, report.Indexed, report.Failed)
	}
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func connectionsCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := resolveArg(c, db)
	if err != nil {
		return err
	}
	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}
	connections, err := retriever.Connections(c.Context, record.Id)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if len(connections) == 0 {
		fmt.Fprintf(w, "%s has no connections\n", record.Name)
		return nil
	}
	for _, conn := range connections {
		fmt.Fprintf(w, "%-17s  %-28s  via %s\n", conn.Kind, conn.CandidateName, strings.Join(conn.Via, ", "))
	}
	return nil
}

func exportNeo4jCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	exporter, err := neo4j.NewExporter(c.String("uri"), c.String("user"), c.String("password"),
		neo4j.WithDatabase(c.String("database")))
	if err != nil {
		return err
	}
	defer exporter.Close(c.Context)

	if err := exporter.VerifyConnectivity(c.Context); err != nil {
		return fmt.Errorf("cannot reach neo4j at %s: %w", c.String("uri"), err)
	}
	n, err := exporter.ExportAll(c.Context, db.GraphStore())
	if err != nil {
		return fmt.Errorf("export stopped after %d candidates: %w", n, err)
	}
	fmt.Fprintf(c.App.Writer, "Exported %d candidates to %s\n", n, c.String("uri"))
	return nil
}

func configInitCommand(c *cli.Context) error {
	path, err := configPath(c)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote default configuration to %s\n", path)
	return nil
}
