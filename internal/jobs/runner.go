package jobs

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/canvas"
	"github.com/ets-berkeley-edu/ripley/internal/dataloch"
	"github.com/ets-berkeley-edu/ripley/internal/sections"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// Job function names, as stored in queue records.
const (
	FuncUpdateSections      = "update_sections"
	FuncPrepareEGradeExport = "prepare_egrade_export"
	FuncFullRefresh         = "bcourses_refresh_full"
)

// Runner holds the collaborators job handlers need.
type Runner struct {
	Canvas *canvas.Client
	Loch   *dataloch.Client
}

// RegisterAll binds every job function to the worker.
func (r *Runner) RegisterAll(w *Worker) {
	w.Register(FuncUpdateSections, func(ctx context.Context, args json.RawMessage) error {
		var a UpdateSectionsArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return fmt.Errorf("bad update_sections args: %w", err)
		}
		return r.UpdateSections(ctx, a)
	})
	w.Register(FuncPrepareEGradeExport, func(ctx context.Context, args json.RawMessage) error {
		var a EGradeExportArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return fmt.Errorf("bad prepare_egrade_export args: %w", err)
		}
		return r.PrepareEGradeExport(ctx, a)
	})
	w.Register(FuncFullRefresh, func(ctx context.Context, _ json.RawMessage) error {
		return r.FullRefresh(ctx)
	})
}

// UpdateSectionsArgs describes a section edit on one course site.
type UpdateSectionsArgs struct {
	CanvasSiteID       int      `json:"canvasSiteId"`
	TermID             string   `json:"termId"`
	SectionIDsToAdd    []string `json:"sectionIdsToAdd"`
	SectionIDsToRemove []string `json:"sectionIdsToRemove"`
	SectionIDsToUpdate []string `json:"sectionIdsToUpdate"`
}

// UpdateSections applies a section edit by generating a sections CSV and
// submitting it as an SIS import.
func (r *Runner) UpdateSections(ctx context.Context, args UpdateSectionsArgs) error {
	course, err := r.Canvas.GetCourse(ctx, args.CanvasSiteID)
	if err != nil {
		return fmt.Errorf("failed to load course site %d: %w", args.CanvasSiteID, err)
	}
	term, err := berkeley.FromSISTermID(args.TermID)
	if err != nil {
		return err
	}

	allIDs := append(append(append([]string{}, args.SectionIDsToAdd...), args.SectionIDsToUpdate...), args.SectionIDsToRemove...)
	rows, err := r.Loch.Sections(ctx, args.TermID, allIDs)
	if err != nil {
		return err
	}
	rowsByID := map[string]bool{}
	for _, row := range rows {
		rowsByID[row.SectionID] = true
	}

	removing := map[string]bool{}
	for _, id := range args.SectionIDsToRemove {
		removing[id] = true
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"section_id", "course_id", "name", "status", "start_date", "end_date"}); err != nil {
		return fmt.Errorf("failed to write sections CSV: %w", err)
	}
	sisCourseID := ""
	if course.SISCourseID != nil {
		sisCourseID = *course.SISCourseID
	}
	for _, id := range allIDs {
		if !removing[id] && !rowsByID[id] {
			slog.Warn("skipping section with no SIS rows", "sectionId", id, "canvasSiteId", args.CanvasSiteID)
			continue
		}
		status := "active"
		if removing[id] {
			status = "deleted"
		}
		sisSectionID := fmt.Sprintf("SEC:%d-%s-%s", term.Year, term.Season, id)
		if err := writer.Write([]string{sisSectionID, sisCourseID, "", status, "", ""}); err != nil {
			return fmt.Errorf("failed to write sections CSV: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write sections CSV: %w", err)
	}

	filename := fmt.Sprintf("sections-%d-%s.csv", args.CanvasSiteID, time.Now().UTC().Format("20060102-150405"))
	if _, err := r.Canvas.PostSISImport(ctx, filename, buf.Bytes()); err != nil {
		return err
	}
	return nil
}

// EGradeExportArgs names the course site whose grades should be staged.
type EGradeExportArgs struct {
	CanvasSiteID int `json:"canvasSiteId"`
}

// PrepareEGradeExport warms the data behind an e-grades download: verifies the
// course site still has official sections and that the loch has grade rows for
// them. The download itself is served synchronously by the HTTP layer.
func (r *Runner) PrepareEGradeExport(ctx context.Context, args EGradeExportArgs) error {
	canvasSections, err := r.Canvas.GetCourseSections(ctx, args.CanvasSiteID)
	if err != nil {
		return fmt.Errorf("failed to load sections of course site %d: %w", args.CanvasSiteID, err)
	}
	projected := sections.ProjectCanvasSections(canvasSections)
	if len(projected) == 0 {
		return fmt.Errorf("course site %d has no official sections", args.CanvasSiteID)
	}
	rows, err := r.Loch.ProfileAndGrades(ctx, projected[0].TermID, sections.SectionIDs(projected))
	if err != nil {
		return err
	}
	slog.Info("e-grade export ready", "canvasSiteId", args.CanvasSiteID, "enrollments", len(rows))
	return nil
}

// FullRefresh reconciles Canvas student enrollments against the loch for the
// current term: missing enrollments are added, enrollments the loch no longer
// carries are deleted. Intended for a daily run.
func (r *Runner) FullRefresh(ctx context.Context) error {
	index, err := r.Loch.CurrentTermIndex(ctx)
	if err != nil {
		return err
	}
	current, err := berkeley.FromEnglish(index.CurrentTermName)
	if err != nil {
		return err
	}
	report, err := r.Canvas.GetCSVReport(ctx, "enrollments", current.SISTermID())
	if err != nil {
		return err
	}

	sectionIDs := reportSectionIDs(report, current)
	if len(sectionIDs) == 0 {
		slog.Info("full refresh found no official sections in Canvas", "termId", current.SISTermID())
		return nil
	}
	students, err := r.Loch.SectionEnrollments(ctx, current.SISTermID(), sectionIDs)
	if err != nil {
		return err
	}

	records := diffEnrollments(report, students, current)
	if len(records) == 0 {
		slog.Info("full refresh found no enrollment changes", "termId", current.SISTermID())
		return nil
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"course_id", "user_id", "role", "section_id", "status"}); err != nil {
		return fmt.Errorf("failed to write enrollments CSV: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write enrollments CSV: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write enrollments CSV: %w", err)
	}

	slog.Info("full refresh submitting enrollment changes", "termId", current.SISTermID(), "changes", len(records))
	filename := fmt.Sprintf("enrollments-%s-%s.csv", current.SISTermID(), time.Now().UTC().Format("20060102-150405"))
	if _, err := r.Canvas.PostSISImport(ctx, filename, buf.Bytes()); err != nil {
		return err
	}
	return nil
}

// reportSectionIDs collects the current-term SIS section ids from a
// provisioning report, in first-appearance order. Canvas-only sections and
// other terms are skipped.
func reportSectionIDs(report []map[string]string, term berkeley.Term) []string {
	seen := map[string]bool{}
	var ids []string
	for _, row := range report {
		sectionID, rowTerm, err := berkeley.ParseCanvasSISSectionID(row["section_id"])
		if err != nil || rowTerm != term {
			continue
		}
		if !seen[sectionID] {
			seen[sectionID] = true
			ids = append(ids, sectionID)
		}
	}
	return ids
}

// diffEnrollments returns the SIS import records bringing Canvas's student
// enrollments in line with the loch: additions for enrolled students Canvas is
// missing, then deletions for active Canvas enrollments the loch dropped.
func diffEnrollments(report []map[string]string, students []types.RosterStudent, term berkeley.Term) [][]string {
	type canvasEnrollment struct {
		sisSectionID string
		uid          string
	}
	inCanvas := map[string]canvasEnrollment{}
	var canvasOrder []string
	for _, row := range report {
		if row["role"] != "student" || row["status"] != "active" {
			continue
		}
		sectionID, rowTerm, err := berkeley.ParseCanvasSISSectionID(row["section_id"])
		if err != nil || rowTerm != term {
			continue
		}
		key := sectionID + ":" + row["user_id"]
		if _, ok := inCanvas[key]; !ok {
			inCanvas[key] = canvasEnrollment{sisSectionID: row["section_id"], uid: row["user_id"]}
			canvasOrder = append(canvasOrder, key)
		}
	}

	inLoch := map[string]bool{}
	var records [][]string
	for _, student := range students {
		if student.EnrollStatus != "E" {
			continue
		}
		key := student.SectionID + ":" + student.UID
		if inLoch[key] {
			continue
		}
		inLoch[key] = true
		if _, ok := inCanvas[key]; !ok {
			sisSectionID := fmt.Sprintf("SEC:%d-%s-%s", term.Year, term.Season, student.SectionID)
			records = append(records, []string{"", student.UID, "student", sisSectionID, "active"})
		}
	}
	for _, key := range canvasOrder {
		if !inLoch[key] {
			enrollment := inCanvas[key]
			records = append(records, []string{"", enrollment.uid, "student", enrollment.sisSectionID, "deleted"})
		}
	}
	return records
}
