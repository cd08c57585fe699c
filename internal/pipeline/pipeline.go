// Package pipeline drives a normalize run: scan, load, fix, save, verify,
// one file at a time.
package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/backup"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/config"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/log"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/metadata"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/policy"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/scanner"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/state"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/verify"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

type Pipeline struct {
	cfg              *config.Config
	scanner          *scanner.Scanner
	unchanged        *policy.UnchangedChecker
	conflict         *policy.ConflictResolver
	backupper        *backup.Backupper
	verifier         *verify.Verifier
	state            *state.State
	logger           *log.Logger
	progressCallback ProgressCallback
	userDataManager  *config.UserDataManager
}

func New(cfg *config.Config) (*Pipeline, error) {
	logger, err := log.New(cfg.LogFile, cfg.LogJSON, true)
	if err != nil {
		return nil, err
	}

	st, err := state.Load(cfg.StateFile)
	if err != nil {
		return nil, err
	}

	userDataManager, err := config.NewUserDataManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create user data manager: %w", err)
	}

	return &Pipeline{
		cfg:             cfg,
		scanner:         scanner.New(cfg.IncludeExtensions),
		unchanged:       policy.NewUnchangedChecker(cfg.CheckMethod),
		conflict:        policy.NewConflictResolver(cfg.ConflictPolicy),
		backupper:       backup.New(cfg.BackupDir),
		verifier:        verify.New(),
		state:           st,
		logger:          logger,
		userDataManager: userDataManager,
	}, nil
}

func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.progressCallback = cb
}

func (p *Pipeline) Run() (*types.RunSummary, error) {
	startTime := time.Now()

	p.logger.Info("Starting scan: '" + p.cfg.Source + "'")

	if p.progressCallback != nil {
		p.progressCallback(ProgressUpdate{
			Type:    "status",
			Message: "Scanning files...",
		})
	}

	entries, err := p.scanner.Scan(p.cfg.Source)
	if err != nil {
		summary := &types.RunSummary{
			StartTime: startTime,
			EndTime:   time.Now(),
			Duration:  time.Since(startTime),
		}
		p.recordHistory(summary, types.RunStatusFailed)
		return nil, err
	}

	p.logger.Info("Found " + strconv.Itoa(len(entries)) + " files")

	summary := &types.RunSummary{
		ScannedFiles: len(entries),
		StartTime:    startTime,
	}

	for i, entry := range entries {
		result := p.processOne(entry)

		summary.Processed++
		switch result.Action {
		case types.FixActionFixed, types.FixActionWouldFix:
			summary.Fixed++
			if result.Fields.Contains(types.TagFileName) {
				summary.Renamed++
			}
		case types.FixActionUnchanged:
			summary.Unchanged++
		case types.FixActionSkipped:
			summary.Skipped++
		case types.FixActionFailed:
			summary.Failed++
		}

		p.logger.Progress(i+1, len(entries), entry.Name)
		p.logger.LogFix(result, 0)

		if p.progressCallback != nil {
			p.progressCallback(ProgressUpdate{
				Type:     "progress",
				Current:  i + 1,
				Total:    len(entries),
				Filename: entry.Name,
				Action:   result.Action,
				Fields:   result.Fields.String(),
				Error:    result.Error,
			})
		}
	}

	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(startTime)

	if !p.cfg.DryRun {
		if err := p.state.Save(); err != nil {
			p.logger.Error("Failed to save state", err)
		}
	}

	p.logger.Summary(*summary)

	status := types.RunStatusSuccess
	if summary.Failed > 0 {
		status = types.RunStatusFailed
	}
	p.recordHistory(summary, status)

	// Give slow websocket clients a chance to drain before "complete".
	time.Sleep(100 * time.Millisecond)

	if p.progressCallback != nil {
		p.progressCallback(ProgressUpdate{
			Type:    "complete",
			Summary: summary,
		})
	}

	return summary, nil
}

// processOne normalizes a single file and reports what happened.
func (p *Pipeline) processOne(entry types.FileEntry) types.FixResult {
	result := types.FixResult{Entry: entry, Path: entry.Path}

	fail := func(err error) types.FixResult {
		result.Action = types.FixActionFailed
		result.Error = err.Error()
		return result
	}

	if !p.cfg.Force {
		if rec, ok := p.state.Lookup(entry.Path); ok {
			unchanged, err := p.unchanged.IsUnchanged(entry, rec.Size, rec.Hash)
			if err == nil && unchanged {
				result.Action = types.FixActionSkipped
				return result
			}
		}
	}

	m, err := metadata.Load(entry.Path)
	if err != nil {
		return fail(err)
	}

	if p.cfg.Description != "" {
		if err := m.SetDescription(p.cfg.Description); err != nil {
			return fail(err)
		}
	}
	if p.cfg.Date != "" {
		if err := m.SetDateFromExif(p.cfg.Date); err != nil {
			return fail(err)
		}
	}
	if p.cfg.FixDimensions {
		if _, err := m.FixDimensions(); err != nil {
			return fail(err)
		}
	}
	if p.cfg.FixRename {
		if target, ok := m.RenameTarget(); ok {
			proceed, err := p.conflict.Resolve(m.Path(), target)
			if err != nil {
				return fail(err)
			}
			if proceed {
				m.FixFileName()
			}
		}
	}

	if m.Modified().IsEmpty() {
		result.Action = types.FixActionUnchanged
		return result
	}

	if p.cfg.DryRun {
		result.Fields = m.Modified()
		result.Action = types.FixActionWouldFix
		return result
	}

	if p.cfg.Backup {
		if _, err := p.backupper.Backup(m.Path()); err != nil {
			return fail(err)
		}
	}

	fields, err := m.Save()
	if err != nil {
		result.Path = m.Path()
		return fail(err)
	}
	result.Path = m.Path()
	result.Fields = fields

	if p.cfg.Verify {
		err := p.verifier.Verify(m.Path(), m.Description(), m.ExifDate(), m.Width(), m.Height(), fields)
		if err != nil {
			return fail(err)
		}
	}

	info, err := os.Stat(m.Path())
	if err != nil {
		return fail(err)
	}
	var hash string
	if p.cfg.CheckMethod == types.CheckMethodHash {
		if hash, err = policy.HashFile(m.Path()); err != nil {
			return fail(err)
		}
	}
	// Keyed by the post-rename path: that is what the next scan will see.
	p.state.MarkProcessed(m.Path(), m.Path(), info.Size(), hash, fields)

	result.Action = types.FixActionFixed
	return result
}

// recordHistory appends the run to the persisted history.
func (p *Pipeline) recordHistory(summary *types.RunSummary, status types.RunStatus) {
	entry := types.RunHistoryEntry{
		ID:        strconv.FormatInt(summary.StartTime.Unix(), 10),
		Summary:   *summary,
		Config:    p.cfg.RunConfig(),
		Status:    status,
		CreatedAt: summary.StartTime,
	}

	if err := p.userDataManager.AddHistoryEntry(entry); err != nil {
		p.logger.Error("Failed to save run history", err)
		// A lost history entry does not fail the run.
	}
}

func (p *Pipeline) Close() error {
	return p.logger.Close()
}
