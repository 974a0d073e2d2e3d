package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"certmail/internal"
	"certmail/internal/config"
	"certmail/internal/util"
)

// RenameStrategy decides which certificate file belongs to which row.
type RenameStrategy string

const (
	// PairByPosition pairs the i-th row with the i-th listed file. It relies
	// on the directory listing following the spreadsheet order.
	PairByPosition RenameStrategy = "position"
	// PairByMatch uses FindMatchingFile, the same lookup the send job uses.
	PairByMatch RenameStrategy = "match"
)

func ParseRenameStrategy(v string) (RenameStrategy, error) {
	switch RenameStrategy(v) {
	case PairByPosition, PairByMatch:
		return RenameStrategy(v), nil
	default:
		return "", fmt.Errorf("unsupported rename strategy: %s", v)
	}
}

type RenameService struct {
	cfg      config.Config
	log      *slog.Logger
	strategy RenameStrategy
	dryRun   bool
}

func NewRenameService(cfg config.Config, log *slog.Logger, strategy RenameStrategy, dryRun bool) *RenameService {
	if strategy == "" {
		strategy = PairByPosition
	}
	return &RenameService{cfg: cfg, log: log, strategy: strategy, dryRun: dryRun}
}

func (s *RenameService) Run() (internal.JobReport, error) {
	wb, err := LoadWorkbook(s.cfg.SheetPath)
	if err != nil {
		return newReport(), err
	}
	files, err := ListCertificates(s.cfg.CertificateDir)
	if err != nil {
		return newReport(), err
	}
	return s.Process(wb.Records, files), nil
}

// Process renames certificates for records. files is updated in place as
// renames happen. Renames already done stay done when a later row fails.
func (s *RenameService) Process(records []internal.ParticipantRecord, files []string) internal.JobReport {
	report := newReport()
	taken := make(map[string]struct{}, len(files))
	vacated := map[string]struct{}{}
	for _, f := range files {
		taken[f] = struct{}{}
	}

	for i, rec := range records {
		report.Processed++
		rowNo := rowNumber(i)
		name := rec.Field(internal.NameHeaders...)
		if name == "" {
			s.log.Error("no name provided for record", "row", rowNo)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Reason: internal.SkipNoName})
			continue
		}

		idx := s.pick(i, rec, name, files)
		if idx < 0 {
			reason := internal.SkipNoFileAtIndex
			if s.strategy == PairByMatch {
				reason = internal.SkipNoCertificate
			}
			s.log.Error("no matching file available", "row", rowNo, "name", name, "strategy", s.strategy)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, Reason: reason})
			continue
		}
		current := files[idx]

		if _, ok := util.TrailingNumber(current); !ok {
			s.log.Error("no identifiable number in file name, skipping", "row", rowNo, "file", current)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, File: current, Reason: internal.SkipNoNumber})
			continue
		}

		target := util.NormalizeName(name) + ".pdf"
		if s.targetTaken(target, taken, vacated) {
			s.log.Warn("rename target already exists, skipping", "row", rowNo, "file", current, "target", target)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, File: current, Reason: internal.SkipTargetExists, Detail: target})
			continue
		}

		if s.dryRun {
			s.log.Info("would rename", "row", rowNo, "from", current, "to", target)
		} else {
			oldPath := filepath.Join(s.cfg.CertificateDir, current)
			newPath := filepath.Join(s.cfg.CertificateDir, target)
			if err := os.Rename(oldPath, newPath); err != nil {
				s.log.Error("rename failed", "row", rowNo, "file", current, "err", err)
				report.Fail(internal.RowOutcome{RowNo: rowNo, Name: name, File: current, Reason: internal.SkipRenameFailed, Detail: err.Error()})
				continue
			}
			s.log.Info("renamed", "row", rowNo, "from", current, "to", target)
		}

		delete(taken, current)
		vacated[current] = struct{}{}
		delete(vacated, target)
		taken[target] = struct{}{}
		files[idx] = target
		report.Done++
	}

	return report
}

func (s *RenameService) pick(i int, rec internal.ParticipantRecord, name string, files []string) int {
	if s.strategy == PairByMatch {
		file, ok := FindMatchingFile(files, rec.Field(internal.HeaderID), name)
		if !ok {
			return -1
		}
		for idx, f := range files {
			if f == file {
				return idx
			}
		}
		return -1
	}
	if i < len(files) {
		return i
	}
	return -1
}

// targetTaken reports whether target is in use in the directory as it stands
// after the renames so far. Dry runs only track those renames in memory, so
// names moved away count as free before the disk is consulted.
func (s *RenameService) targetTaken(target string, taken, vacated map[string]struct{}) bool {
	if _, ok := taken[target]; ok {
		return true
	}
	if _, ok := vacated[target]; ok {
		return false
	}
	_, err := os.Lstat(filepath.Join(s.cfg.CertificateDir, target))
	return !errors.Is(err, fs.ErrNotExist)
}
