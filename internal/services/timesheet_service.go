package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/mkessler/timetrack/internal/constants"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"github.com/mkessler/timetrack/internal/policy"
	"github.com/mkessler/timetrack/internal/repository"
	"github.com/mkessler/timetrack/internal/utils"
	"github.com/mkessler/timetrack/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrTimesheetNotFound   = errors.New("timesheet not found")
	ErrTimesheetNotRunning = errors.New("timesheet is not running")
)

// TimesheetService handles the timesheet lifecycle. Times are truncated
// to whole minutes on every write path, and a user never has more than
// one running entry: starting a new one force-stops the rest.
type TimesheetService struct {
	timesheetRepo repository.TimesheetRepository
	projectRepo   repository.ProjectRepository
	activityRepo  repository.ActivityRepository
	tagRepo       repository.TagRepository
	userRepo      repository.UserRepository
	clock         utils.Clock
}

// NewTimesheetService creates a new TimesheetService.
func NewTimesheetService(
	timesheetRepo repository.TimesheetRepository,
	projectRepo repository.ProjectRepository,
	activityRepo repository.ActivityRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	clock utils.Clock,
) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		projectRepo:   projectRepo,
		activityRepo:  activityRepo,
		tagRepo:       tagRepo,
		userRepo:      userRepo,
		clock:         clock,
	}
}

// TimesheetInput carries the raw form fields for a timesheet entry.
// Start and End are raw date strings; an empty End starts a running
// entry.
type TimesheetInput struct {
	Start      string
	End        string
	ProjectID  uint64
	ActivityID uint64
	Comment    string
	TagIDs     []uint64
}

// CreateTimesheet validates the entry and inserts it, force-stopping
// any running entries of the same user in the same transaction.
func (s *TimesheetService) CreateTimesheet(userID uint64, input TimesheetInput) (*models.Timesheet, error) {
	fields, verrs, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}
	if verrs.Any() {
		return nil, verrs
	}

	ts := &models.Timesheet{
		UserID:     userID,
		ProjectID:  input.ProjectID,
		ActivityID: input.ActivityID,
		Start:      fields.start,
		End:        fields.end,
		Duration:   fields.duration,
		Comment:    fields.comment,
	}
	if err := s.timesheetRepo.CreateStoppingRunning(ts); err != nil {
		return nil, err
	}

	if err := s.timesheetRepo.UpdateTags(ts.ID, fields.tagIDs); err != nil {
		return nil, err
	}

	return s.getTimesheet(ts.ID)
}

// UpdateTimesheet applies the create validation to an existing entry
// and replaces its tag set. Editing never force-stops other entries.
// The caller is expected to have scoped the row already.
func (s *TimesheetService) UpdateTimesheet(id uint64, input TimesheetInput) (*models.Timesheet, error) {
	ts, err := s.getTimesheet(id)
	if err != nil {
		return nil, err
	}

	fields, verrs, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}
	if verrs.Any() {
		return nil, verrs
	}

	ts.ProjectID = input.ProjectID
	ts.ActivityID = input.ActivityID
	ts.Start = fields.start
	ts.End = fields.end
	ts.Duration = fields.duration
	ts.Comment = fields.comment
	if err := s.timesheetRepo.Update(ts); err != nil {
		return nil, err
	}

	if err := s.timesheetRepo.UpdateTags(ts.ID, fields.tagIDs); err != nil {
		return nil, err
	}

	return s.getTimesheet(ts.ID)
}

// StopTimesheet closes a running entry at the current minute. An entry
// started on an earlier calendar day is closed at 23:59 of its start
// date instead, so a forgotten entry never spans midnight.
func (s *TimesheetService) StopTimesheet(id uint64) (*models.Timesheet, error) {
	ts, err := s.getTimesheet(id)
	if err != nil {
		return nil, err
	}
	if !ts.Running() {
		return nil, ErrTimesheetNotRunning
	}

	now := utils.TruncateToMinute(s.clock.Now())
	end := now
	if utils.BeforeDay(ts.Start, now) {
		end = utils.EndOfDay(ts.Start)
	}

	duration := utils.MinutesBetween(ts.Start, end)
	ts.End = &end
	ts.Duration = &duration
	if err := s.timesheetRepo.Update(ts); err != nil {
		return nil, err
	}

	return s.getTimesheet(ts.ID)
}

// RestartTimesheet starts a fresh running entry copying the project,
// activity, comment and tags of an existing one. Any running entries
// are force-stopped like on create.
func (s *TimesheetService) RestartTimesheet(id, userID uint64) (*models.Timesheet, error) {
	source, err := s.getTimesheet(id)
	if err != nil {
		return nil, err
	}

	ts := &models.Timesheet{
		UserID:     userID,
		ProjectID:  source.ProjectID,
		ActivityID: source.ActivityID,
		Start:      utils.TruncateToMinute(s.clock.Now()),
		Comment:    source.Comment,
	}
	if err := s.timesheetRepo.CreateStoppingRunning(ts); err != nil {
		return nil, err
	}

	tagIDs := make([]uint64, 0, len(source.Tags))
	for _, tag := range source.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.timesheetRepo.UpdateTags(ts.ID, tagIDs); err != nil {
		return nil, err
	}

	return s.getTimesheet(ts.ID)
}

// DeleteTimesheet removes an entry and its tag links.
func (s *TimesheetService) DeleteTimesheet(id uint64) error {
	if _, err := s.getTimesheet(id); err != nil {
		return err
	}
	return s.timesheetRepo.Delete(id)
}

// GetTimesheet returns an entry with relations preloaded.
func (s *TimesheetService) GetTimesheet(id uint64) (*models.Timesheet, error) {
	return s.getTimesheet(id)
}

// GetTimesheetForViewer returns an entry only if the viewer may see it:
// admins see every entry, team leads their own and their team members'
// entries, users their own.
func (s *TimesheetService) GetTimesheetForViewer(viewer policy.Viewer, id uint64) (*models.Timesheet, error) {
	ts, err := s.getTimesheet(id)
	if err != nil {
		return nil, err
	}

	switch viewer.Scope() {
	case policy.ScopeAll:
		return ts, nil
	case policy.ScopeTeams:
		if ts.UserID == viewer.UserID {
			return ts, nil
		}
		if _, err := s.userRepo.FindOneByIDAndTeamLeaderID(ts.UserID, viewer.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTimesheetNotFound
			}
			return nil, fmt.Errorf("failed to check timesheet owner: %w", err)
		}
		return ts, nil
	default:
		if ts.UserID != viewer.UserID {
			return nil, ErrTimesheetNotFound
		}
		return ts, nil
	}
}

// ListTimesheetsForViewer lists entries with the filter narrowed to the
// viewer's scope before it reaches the repository.
func (s *TimesheetService) ListTimesheetsForViewer(viewer policy.Viewer, filter repository.TimesheetFilter) ([]models.Timesheet, int64, error) {
	scoped, err := s.scopeFilter(viewer, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.timesheetRepo.List(scoped)
}

// GetActiveTimesheet returns the user's running entry, or
// ErrTimesheetNotRunning when there is none.
func (s *TimesheetService) GetActiveTimesheet(userID uint64) (*models.Timesheet, error) {
	running, err := s.timesheetRepo.FindRunningByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find running timesheet: %w", err)
	}
	if len(running) == 0 {
		return nil, ErrTimesheetNotRunning
	}
	return s.getTimesheet(running[0].ID)
}

type timesheetFields struct {
	start    time.Time
	end      *time.Time
	duration *int
	comment  string
	tagIDs   []uint64
}

// validateInput checks the dates, the project and activity pairing and
// the tag references, collecting every failure before reporting.
func (s *TimesheetService) validateInput(input TimesheetInput) (timesheetFields, *apierrors.ValidationErrors, error) {
	fields := timesheetFields{comment: validation.Sanitize(input.Comment)}

	verrs := apierrors.NewValidationErrors()
	if !validation.ValidateMaxLength(fields.comment, constants.CommentMaxLength) {
		verrs.Add("comment", fmt.Sprintf("must be at most %d characters", constants.CommentMaxLength))
	}

	if input.Start == "" {
		verrs.Add("start", "is required")
	} else if start, ok := validation.ParseDateTime(input.Start); ok {
		fields.start = utils.TruncateToMinute(start)
	} else {
		verrs.Add("start", "is not a valid date")
	}

	if input.End != "" {
		if end, ok := validation.ParseDateTime(input.End); ok {
			truncated := utils.TruncateToMinute(end)
			fields.end = &truncated
		} else {
			verrs.Add("end", "is not a valid date")
		}
	}

	if fields.end != nil && !verrs.Has("start") {
		if fields.end.Before(fields.start) {
			verrs.Add("end", "must not be before start")
		} else {
			duration := utils.MinutesBetween(fields.start, *fields.end)
			fields.duration = &duration
		}
	}

	if err := s.validatePairing(input.ProjectID, input.ActivityID, verrs); err != nil {
		return fields, nil, err
	}

	// The deduplicated set is what gets persisted: repeated ids in the
	// request must not produce duplicate link rows.
	fields.tagIDs = dedupe(input.TagIDs)
	if len(fields.tagIDs) > 0 {
		tags, err := s.tagRepo.FindAllByIDs(fields.tagIDs)
		if err != nil {
			return fields, nil, fmt.Errorf("failed to check tags: %w", err)
		}
		if len(tags) != len(fields.tagIDs) {
			verrs.Add("tags", "contains an unknown tag")
		}
	}

	return fields, verrs, nil
}

// validatePairing checks that the activity may be booked on the
// project: an activity bound to another project is never valid, a
// global activity needs the project to accept global activities, and a
// project with a restricted set only accepts members of that set.
func (s *TimesheetService) validatePairing(projectID, activityID uint64, verrs *apierrors.ValidationErrors) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verrs.Add("project", "does not exist")
			return nil
		}
		return fmt.Errorf("failed to check project: %w", err)
	}

	activity, err := s.activityRepo.FindByID(activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verrs.Add("activity", "does not exist")
			return nil
		}
		return fmt.Errorf("failed to check activity: %w", err)
	}

	if !activity.Global() && *activity.ProjectID != project.ID {
		verrs.Add("activity", "is bound to a different project")
		return nil
	}

	if project.GlobalActivities {
		return nil
	}

	if activity.Global() {
		verrs.Add("activity", "is not allowed on this project")
		return nil
	}

	allowed, err := s.projectRepo.FindAllowedActivityIDs(project.ID)
	if err != nil {
		return fmt.Errorf("failed to load allowed activities: %w", err)
	}
	for _, id := range allowed {
		if id == activity.ID {
			return nil
		}
	}
	verrs.Add("activity", "is not allowed on this project")
	return nil
}

// scopeFilter narrows the user restriction to what the viewer's role
// permits. Team leads see their own entries plus those of users sharing
// a team they lead; requesting a user outside that set yields nothing
// rather than an error.
func (s *TimesheetService) scopeFilter(viewer policy.Viewer, filter repository.TimesheetFilter) (repository.TimesheetFilter, error) {
	switch viewer.Scope() {
	case policy.ScopeAll:
		return filter, nil
	case policy.ScopeTeams:
		members, err := s.userRepo.FindAllByTeamLeaderID(viewer.UserID)
		if err != nil {
			return filter, fmt.Errorf("failed to list team members: %w", err)
		}
		visible := map[uint64]struct{}{viewer.UserID: {}}
		for _, m := range members {
			visible[m.ID] = struct{}{}
		}
		if len(filter.UserIDs) == 0 {
			ids := make([]uint64, 0, len(visible))
			for id := range visible {
				ids = append(ids, id)
			}
			filter.UserIDs = ids
			return filter, nil
		}
		kept := make([]uint64, 0, len(filter.UserIDs))
		for _, id := range filter.UserIDs {
			if _, ok := visible[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			// An empty UserIDs set means unrestricted, so pin the
			// filter to an id no row can match.
			kept = []uint64{0}
		}
		filter.UserIDs = kept
		return filter, nil
	default:
		filter.UserIDs = []uint64{viewer.UserID}
		return filter, nil
	}
}

func (s *TimesheetService) getTimesheet(id uint64) (*models.Timesheet, error) {
	ts, err := s.timesheetRepo.FindByID(id, "Project", "Activity", "Tags")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}
	return ts, nil
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
