// Package pipeline provides the high-level orchestration for the lesson review process.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/lesson-factory/internal/classify"
	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/db"
	"github.com/jonathan/lesson-factory/internal/gate"
	"github.com/jonathan/lesson-factory/internal/ingest"
	"github.com/jonathan/lesson-factory/internal/observability"
	"github.com/jonathan/lesson-factory/internal/pipeline/steps"
	"github.com/jonathan/lesson-factory/internal/quota"
	"github.com/jonathan/lesson-factory/internal/report"
	"github.com/jonathan/lesson-factory/internal/state"
	"github.com/jonathan/lesson-factory/internal/types"
	"github.com/jonathan/lesson-factory/internal/validation"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	SourcePath  string
	UnitsDir    string
	RulesetPath string
	StateDir    string
	RunID       string
	Workers     int
	Resume      bool
	Verbose     bool
	DatabaseURL string
	OnProgress  ProgressCallback
}

// SectionResult holds one category section's review outputs.
type SectionResult struct {
	Category   string            `json:"category"`
	Violations []types.Violation `json:"violations,omitempty"`
	Quota      *types.QuotaResult `json:"quota,omitempty"`
	Gate       *types.GateResult  `json:"gate,omitempty"`
}

// Result is the full outcome of a pipeline run.
type Result struct {
	RunID       string                    `json:"run_id"`
	Items       *types.ItemBatch          `json:"items"`
	Assignments *types.AssignmentSet      `json:"assignments"`
	Sections    map[string]*SectionResult `json:"sections"`
	Report      *types.Report             `json:"report"`
	Passed      bool                      `json:"passed"`
}

// Intermediate artifact filenames inside the run's state directory. Resumed
// runs reload completed steps from these instead of recomputing them.
const (
	artifactItems       = "items.json"
	artifactAssignments = "assignments.json"
	artifactSections    = "sections.json"
	artifactReport      = "report.json"
)

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    opts.RunID,
			Content:  content,
		})
	}
}

func saveArtifact(store *state.Store, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(store.Dir(), name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func loadArtifact(store *state.Store, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// advance records a finished step by moving the run frontier to the next
// step in canonical order.
func advance(store *state.Store, finished string) error {
	idx := state.StepIndex(finished)
	next := finished
	if idx >= 0 && idx+1 < len(state.StepOrder) {
		next = state.StepOrder[idx+1]
	}
	_, err := store.Write(state.Update{CurrentStep: &next})
	return err
}

// failRun marks the run failed and records the error before returning it.
func failRun(store *state.Store, step, section string, err error) error {
	_ = store.AppendError(step, section, err.Error())
	failed := state.StatusFailed
	_, _ = store.Write(state.Update{Status: &failed})
	return err
}

// RunPipeline orchestrates the full lesson review pipeline
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	if opts.RunID == "" {
		if opts.Resume {
			return nil, fmt.Errorf("resume requires a run id")
		}
		opts.RunID = uuid.NewString()
	}
	if opts.StateDir == "" {
		opts.StateDir = "state"
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	rs := config.DefaultRuleset()
	if opts.RulesetPath != "" {
		var err error
		rs, err = config.LoadRuleset(opts.RulesetPath)
		if err != nil {
			return nil, fmt.Errorf("ruleset loading failed: %w", err)
		}
	}

	store, err := state.NewStore(opts.StateDir, opts.RunID)
	if err != nil {
		return nil, fmt.Errorf("state store initialization failed: %w", err)
	}

	// Initialize database connection if configured
	var database *db.DB
	var dbRunID uuid.UUID
	if opts.DatabaseURL != "" {
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
		}
	}

	done := map[string]bool{}
	if opts.Resume {
		verdict, problems, err := store.Validate()
		if err != nil {
			return nil, fmt.Errorf("state validation failed: %w", err)
		}
		if verdict != state.VerdictValid {
			return nil, fmt.Errorf("cannot resume run %s: state is %s: %v", opts.RunID, verdict, problems)
		}
		record, err := store.Read()
		if err != nil {
			return nil, fmt.Errorf("state read failed: %w", err)
		}
		done = steps.CompletedSteps(record)
		fmt.Printf("Resuming run %s from step %s...\n", opts.RunID, record.CurrentStep)
	}
	inProgress := state.StatusInProgress
	update := state.Update{Status: &inProgress}
	if !opts.Resume {
		first := state.StepIngest
		update.CurrentStep = &first
	}
	if _, err := store.Write(update); err != nil {
		return nil, fmt.Errorf("state write failed: %w", err)
	}

	// Step 1: Ingest the source document into an ordered item sequence
	var items *types.ItemBatch
	if done[state.StepIngest] {
		fmt.Printf("Step 1/7: Ingest already completed, reloading items...\n")
		items, err = ingest.LoadItems(filepath.Join(store.Dir(), artifactItems))
		if err != nil {
			return nil, failRun(store, state.StepIngest, "", fmt.Errorf("reloading items failed: %w", err))
		}
	} else {
		fmt.Printf("Step 1/7: Ingesting source document: %s...\n", opts.SourcePath)
		items, err = ingest.FromFile(opts.SourcePath)
		if err != nil {
			return nil, failRun(store, state.StepIngest, "", fmt.Errorf("source ingestion failed: %w", err))
		}
		if err := ingest.WriteItems(filepath.Join(store.Dir(), artifactItems), items); err != nil {
			return nil, failRun(store, state.StepIngest, "", err)
		}
		if err := advance(store, state.StepIngest); err != nil {
			return nil, err
		}
	}
	emitProgress(&opts, state.StepIngest, "",
		fmt.Sprintf("Ingested %d items from %s", len(items.Items), items.Source), nil)

	// Step 2: Classify every item into exactly one category
	var assignments *types.AssignmentSet
	if done[state.StepClassify] {
		fmt.Printf("Step 2/7: Classification already completed, reloading assignments...\n")
		assignments = &types.AssignmentSet{}
		if err := loadArtifact(store, artifactAssignments, assignments); err != nil {
			return nil, failRun(store, state.StepClassify, "", err)
		}
	} else {
		fmt.Printf("Step 2/7: Classifying %d items...\n", len(items.Items))
		engine := classify.NewEngine(rs)
		assignments, err = engine.ClassifyBatch(items.Items)
		if err != nil {
			return nil, failRun(store, state.StepClassify, "", fmt.Errorf("classification failed: %w", err))
		}
		if err := saveArtifact(store, artifactAssignments, assignments); err != nil {
			return nil, failRun(store, state.StepClassify, "", err)
		}
		if err := advance(store, state.StepClassify); err != nil {
			return nil, err
		}
	}
	if opts.Verbose {
		printer.PrintAssignments(assignments)
	}
	emitProgress(&opts, state.StepClassify, "",
		fmt.Sprintf("Classified %d items into %d categories", len(assignments.Assignments), len(assignments.CategoryCounts)), assignments)

	// Step 3: Load the authored unit and deck documents
	fmt.Printf("Step 3/7: Loading content units from %s...\n", opts.UnitsDir)
	units, decks, err := validation.LoadUnitsDir(opts.UnitsDir)
	if err != nil {
		return nil, failRun(store, state.StepLoad, "", fmt.Errorf("unit loading failed: %w", err))
	}
	if len(units) == 0 {
		return nil, failRun(store, state.StepLoad, "", fmt.Errorf("no content units found in %s", opts.UnitsDir))
	}

	categories := make([]string, 0, len(units))
	for name := range units {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	if !done[state.StepLoad] {
		sections := make(map[string]state.SectionState, len(categories))
		for _, name := range categories {
			sections[name] = state.SectionState{Status: state.StatusPending}
		}
		if _, err := store.Write(state.Update{Sections: sections}); err != nil {
			return nil, err
		}
		if err := advance(store, state.StepLoad); err != nil {
			return nil, err
		}
	}
	emitProgress(&opts, state.StepLoad, "",
		fmt.Sprintf("Loaded %d units and %d decks", len(units), len(decks)), nil)

	underPopulated := make(map[string]bool, len(assignments.UnderPopulated))
	for _, name := range assignments.UnderPopulated {
		underPopulated[name] = true
	}

	results := make(map[string]*SectionResult, len(categories))

	if done[state.StepReview] && done[state.StepGate] {
		fmt.Printf("Step 4/7: Section review already completed, reloading results...\n")
		fmt.Printf("Step 5/7: Quality gates already completed, reloading results...\n")
		if err := loadArtifact(store, artifactSections, &results); err != nil {
			return nil, failRun(store, state.StepReview, "", err)
		}
	} else {
		// Step 4: Review every section concurrently (constraints + quota)
		fmt.Printf("Step 4/7: Reviewing %d sections (%d workers)...\n", len(categories), opts.Workers)

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		var mu sync.Mutex

		for _, name := range categories {
			name := name
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				sec := &SectionResult{Category: name}

				if _, err := store.Write(state.Update{Sections: map[string]state.SectionState{
					name: {Status: state.StatusInProgress, LastStep: state.StepReview},
				}}); err != nil {
					return err
				}

				violations, err := validation.ValidateUnit(units[name], rs)
				if err != nil {
					_ = store.AppendError(state.StepReview, name, err.Error())
					return fmt.Errorf("section %s validation failed: %w", name, err)
				}
				sec.Violations = violations.Violations

				if deck, ok := decks[name]; ok {
					q, err := quota.CheckDeck(deck, rs)
					if err != nil {
						_ = store.AppendError(state.StepReview, name, err.Error())
						return fmt.Errorf("section %s quota check failed: %w", name, err)
					}
					q.Category = name
					sec.Quota = q
				}

				mu.Lock()
				results[name] = sec
				mu.Unlock()

				emitProgress(&opts, state.StepReview, name,
					fmt.Sprintf("Reviewed section %s: %d violations", name, len(sec.Violations)), nil)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			failed := state.StatusFailed
			_, _ = store.Write(state.Update{Status: &failed})
			return nil, err
		}
		if err := advance(store, state.StepReview); err != nil {
			return nil, err
		}

		// Step 5: Score each section's quality gate
		fmt.Printf("Step 5/7: Scoring quality gates...\n")
		for _, name := range categories {
			sec := results[name]
			gr, err := gate.Score(gate.Input{
				Category:       name,
				Violations:     sec.Violations,
				Quota:          sec.Quota,
				UnderPopulated: underPopulated[name],
			}, rs)
			if err != nil {
				return nil, failRun(store, state.StepGate, name, fmt.Errorf("section %s gate scoring failed: %w", name, err))
			}
			sec.Gate = gr

			if _, err := store.Write(state.Update{Sections: map[string]state.SectionState{
				name: {Status: state.StatusInProgress, LastStep: state.StepGate},
			}}); err != nil {
				return nil, err
			}
			emitProgress(&opts, state.StepGate, name,
				fmt.Sprintf("Gate for %s: %s (%.1f)", name, gr.Status, gr.WeightedTotal), gr)
		}
		if err := saveArtifact(store, artifactSections, results); err != nil {
			return nil, failRun(store, state.StepGate, "", err)
		}
		if err := advance(store, state.StepGate); err != nil {
			return nil, err
		}
	}

	if opts.Verbose {
		for _, name := range categories {
			sec := results[name]
			printer.PrintViolations(&types.Violations{Violations: sec.Violations})
			printer.PrintQuota(sec.Quota)
			printer.PrintGate(sec.Gate)
		}
	}

	// Step 6: Build the remediation report across all sections
	var remediation *types.Report
	if done[state.StepReport] {
		fmt.Printf("Step 6/7: Report already completed, reloading...\n")
		remediation = &types.Report{}
		if err := loadArtifact(store, artifactReport, remediation); err != nil {
			return nil, failRun(store, state.StepReport, "", err)
		}
	} else {
		fmt.Printf("Step 6/7: Building remediation report...\n")
		var allViolations []types.Violation
		var quotas []*types.QuotaResult
		var gates []*types.GateResult
		for _, name := range categories {
			sec := results[name]
			allViolations = append(allViolations, sec.Violations...)
			if sec.Quota != nil {
				quotas = append(quotas, sec.Quota)
			}
			if sec.Gate != nil {
				gates = append(gates, sec.Gate)
			}
		}
		remediation, err = report.Build(allViolations, quotas, gates)
		if err != nil {
			return nil, failRun(store, state.StepReport, "", fmt.Errorf("report building failed: %w", err))
		}
		if err := saveArtifact(store, artifactReport, remediation); err != nil {
			return nil, failRun(store, state.StepReport, "", err)
		}
		if err := advance(store, state.StepReport); err != nil {
			return nil, err
		}
	}
	if opts.Verbose {
		printer.PrintReport(remediation)
	}
	emitProgress(&opts, state.StepReport, "",
		fmt.Sprintf("Report: %d findings, severity %s", remediation.TotalFindings, remediation.OverallSeverity), remediation)

	passed := true
	for _, name := range categories {
		if g := results[name].Gate; g == nil || !g.Passed() {
			passed = false
		}
	}

	// Step 7: Archive the run (database persistence + final state)
	fmt.Printf("Step 7/7: Archiving run %s...\n", opts.RunID)
	if database != nil {
		dbRunID, err = database.CreateRun(ctx, opts.RunID, filepath.Base(opts.SourcePath))
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else {
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Created database run: %s\n", dbRunID)
			}
			_ = database.SaveArtifact(ctx, dbRunID, db.StepItems, "", items)
			_ = database.SaveArtifact(ctx, dbRunID, db.StepAssignments, "", assignments)
			_ = database.SaveArtifact(ctx, dbRunID, db.StepReport, "", remediation)
			for _, name := range categories {
				sec := results[name]
				_ = database.SaveArtifact(ctx, dbRunID, db.StepViolations, name, &types.Violations{Violations: sec.Violations})
				if sec.Quota != nil {
					_ = database.SaveArtifact(ctx, dbRunID, db.StepQuota, name, sec.Quota)
				}
				if sec.Gate != nil {
					_ = database.SaveArtifact(ctx, dbRunID, db.StepGateResults, name, sec.Gate)
				}
				_, _ = database.UpsertRunSection(ctx, dbRunID, &db.RunSectionInput{
					Name:     name,
					Status:   db.SectionStatusCompleted,
					LastStep: state.StepArchive,
				})
			}
			_ = database.CompleteRun(ctx, dbRunID, db.RunStatusCompleted)
		}
	}

	finalSections := make(map[string]state.SectionState, len(categories))
	for _, name := range categories {
		finalSections[name] = state.SectionState{Status: state.StatusCompleted, LastStep: state.StepArchive}
	}
	completed := state.StatusCompleted
	last := state.StepArchive
	if _, err := store.Write(state.Update{
		Status:      &completed,
		CurrentStep: &last,
		Sections:    finalSections,
	}); err != nil {
		return nil, err
	}
	emitProgress(&opts, state.StepArchive, "", "Run archived", nil)

	if passed {
		fmt.Printf("\n✅ Run %s completed: all gates passed\n", opts.RunID)
	} else {
		fmt.Printf("\n⚠️  Run %s completed: remediation required\n", opts.RunID)
	}

	return &Result{
		RunID:       opts.RunID,
		Items:       items,
		Assignments: assignments,
		Sections:    results,
		Report:      remediation,
		Passed:      passed,
	}, nil
}
