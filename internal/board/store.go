// Package board holds the per-session projection of a project's kanban
// data: tasks by id, columns with ordered task id lists, milestones with
// task id sets. The projection is rebuilt in full only by Load; every
// other method calls exactly one domain operation and patches the indexes
// from its return value, never from guessed deltas. A failed operation
// leaves the projection untouched.
package board

import (
	"errors"
	"sync"

	"github.com/shirayuki/taskboard/internal/models"
	"github.com/shirayuki/taskboard/internal/services"
)

var (
	// ErrNotLoaded is returned when a patch method runs before Load.
	ErrNotLoaded = errors.New("board: project not loaded")

	// ErrNotProjectMember is returned by Load when the user is not a
	// member of the project.
	ErrNotProjectMember = errors.New("board: user is not a member of this project")
)

// TaskView is the projection of one task.
type TaskView struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	StatusID    uint64          `json:"status_id"`
	MilestoneID *uint64         `json:"milestone_id"`
	StartDate   *int64          `json:"start_date"`
	EndDate     *int64          `json:"end_date"`
}

// StatusView is the projection of one kanban column. TaskIDs keeps the
// column's presentation order (insertion order).
type StatusView struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TaskIDs     []uint64 `json:"task_ids"`
}

// MilestoneView is the projection of one milestone. TaskIDs is a set.
type MilestoneView struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	DueDate     *int64              `json:"due_date"`
	TaskIDs     map[uint64]struct{} `json:"-"`
}

// Store is one session's view model. All access goes through its methods;
// every patch happens under one mutex acquisition so the renderer never
// observes a task id in zero or two columns.
type Store struct {
	mu sync.Mutex

	projectService   *services.ProjectService
	statusService    *services.StatusService
	milestoneService *services.MilestoneService
	taskService      *services.TaskService

	loaded      bool
	projectID   uint64
	projectName string
	tasks       map[uint64]*TaskView
	statuses    map[uint64]*StatusView
	milestones  map[uint64]*MilestoneView
}

// NewStore creates an empty Store bound to the domain services.
func NewStore(
	projectService *services.ProjectService,
	statusService *services.StatusService,
	milestoneService *services.MilestoneService,
	taskService *services.TaskService,
) *Store {
	return &Store{
		projectService:   projectService,
		statusService:    statusService,
		milestoneService: milestoneService,
		taskService:      taskService,
	}
}

// Load rebuilds the whole projection for the project. This is the only
// full rebuild; it verifies the user's membership first.
func (s *Store) Load(projectID uint64, userID string) error {
	project, err := s.projectService.GetProject(projectID)
	if err != nil {
		return err
	}

	member, err := s.projectService.IsMember(projectID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotProjectMember
	}

	statuses, err := s.statusService.ListStatuses(projectID)
	if err != nil {
		return err
	}

	milestones, err := s.milestoneService.ListMilestones(projectID)
	if err != nil {
		return err
	}

	tasks := map[uint64]*TaskView{}
	statusViews := map[uint64]*StatusView{}
	milestoneViews := map[uint64]*MilestoneView{}

	for _, m := range milestones {
		milestoneViews[m.ID] = &MilestoneView{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			DueDate:     m.DueDate,
			TaskIDs:     map[uint64]struct{}{},
		}
	}

	for _, st := range statuses {
		view := &StatusView{
			ID:          st.ID,
			Name:        st.Name,
			Description: st.Description,
			TaskIDs:     []uint64{},
		}
		statusViews[st.ID] = view

		columnTasks, err := s.taskService.TasksByStatus(st.ID)
		if err != nil {
			return err
		}

		for _, t := range columnTasks {
			tasks[t.ID] = newTaskView(t)
			view.TaskIDs = append(view.TaskIDs, t.ID)

			if t.MilestoneID != nil {
				if mv, ok := milestoneViews[*t.MilestoneID]; ok {
					mv.TaskIDs[t.ID] = struct{}{}
				}
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	s.projectID = project.ID
	s.projectName = project.Name
	s.tasks = tasks
	s.statuses = statusViews
	s.milestones = milestoneViews

	return nil
}

// CreateStatus creates a column and inserts it with an empty task list.
func (s *Store) CreateStatus(name string) (StatusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return StatusView{}, ErrNotLoaded
	}

	status, err := s.statusService.CreateStatus(name, "", s.projectID)
	if err != nil {
		return StatusView{}, err
	}

	view := &StatusView{
		ID:          status.ID,
		Name:        status.Name,
		Description: status.Description,
		TaskIDs:     []uint64{},
	}
	s.statuses[status.ID] = view

	return *view, nil
}

// CreateTask creates a task in a column and appends it to that column's
// ordered list. A task created with a milestone also joins the milestone's
// task set.
func (s *Store) CreateTask(input services.CreateTaskInput) (TaskView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return TaskView{}, ErrNotLoaded
	}
	if err := s.checkStatus(input.StatusID); err != nil {
		return TaskView{}, err
	}
	if input.MilestoneID != nil {
		if err := s.checkMilestone(*input.MilestoneID); err != nil {
			return TaskView{}, err
		}
	}

	task, err := s.taskService.CreateTask(input)
	if err != nil {
		return TaskView{}, err
	}

	view := newTaskView(*task)
	s.tasks[task.ID] = view

	if column, ok := s.statuses[task.StatusID]; ok {
		column.TaskIDs = append(column.TaskIDs, task.ID)
	}
	if task.MilestoneID != nil {
		if mv, ok := s.milestones[*task.MilestoneID]; ok {
			mv.TaskIDs[task.ID] = struct{}{}
		}
	}

	return *view, nil
}

// RenameStatus renames a column in place. On error nothing is patched, so
// the caller can revert its editor to the displayed name.
func (s *Store) RenameStatus(statusID uint64, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkStatus(statusID); err != nil {
		return err
	}

	status, err := s.statusService.RenameStatus(statusID, newName)
	if err != nil {
		return err
	}

	if view, ok := s.statuses[status.ID]; ok {
		view.Name = status.Name
	}

	return nil
}

// RenameTask renames a task in place.
func (s *Store) RenameTask(taskID uint64, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkTask(taskID); err != nil {
		return err
	}

	task, err := s.taskService.RenameTask(taskID, newName)
	if err != nil {
		return err
	}

	if view, ok := s.tasks[task.ID]; ok {
		view.Name = task.Name
	}

	return nil
}

// SetTaskDescription replaces a task's description.
func (s *Store) SetTaskDescription(taskID uint64, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkTask(taskID); err != nil {
		return err
	}

	task, err := s.taskService.SetTaskDescription(taskID, description)
	if err != nil {
		return err
	}

	if view, ok := s.tasks[task.ID]; ok {
		view.Description = task.Description
	}

	return nil
}

// UpdateTaskDates sets a task's date range.
func (s *Store) UpdateTaskDates(taskID uint64, startDate, endDate *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkTask(taskID); err != nil {
		return err
	}

	task, err := s.taskService.UpdateTaskDates(taskID, startDate, endDate)
	if err != nil {
		return err
	}

	if view, ok := s.tasks[task.ID]; ok {
		view.StartDate = task.StartDate
		view.EndDate = task.EndDate
	}

	return nil
}

// MoveTask moves a task to another column. The id leaves the previous
// column's list and joins the target's in the same patch, so no
// intermediate state is observable.
func (s *Store) MoveTask(taskID, statusID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkTask(taskID); err != nil {
		return err
	}
	if err := s.checkStatus(statusID); err != nil {
		return err
	}

	previousStatusID, err := s.taskService.SetStatus(taskID, statusID)
	if err != nil {
		return err
	}

	if previous, ok := s.statuses[previousStatusID]; ok {
		previous.TaskIDs = removeID(previous.TaskIDs, taskID)
	}
	if target, ok := s.statuses[statusID]; ok {
		target.TaskIDs = append(target.TaskIDs, taskID)
	}
	if view, ok := s.tasks[taskID]; ok {
		view.StatusID = statusID
	}

	return nil
}

// DeleteStatus deletes a column, migrating its tasks to another column.
// The migrated tasks are patched from the operation's return value.
func (s *Store) DeleteStatus(statusID, migrationStatusID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkStatus(statusID); err != nil {
		return err
	}
	if err := s.checkStatus(migrationStatusID); err != nil {
		return err
	}

	moved, err := s.statusService.DeleteStatus(statusID, migrationStatusID)
	if err != nil {
		return err
	}

	delete(s.statuses, statusID)

	target, hasTarget := s.statuses[migrationStatusID]
	for _, task := range moved {
		if view, ok := s.tasks[task.ID]; ok {
			view.StatusID = task.StatusID
		}
		if hasTarget {
			target.TaskIDs = append(target.TaskIDs, task.ID)
		}
	}

	return nil
}

// DeleteTask deletes a task and drops it from its column's list and, when
// assigned, from its milestone's set.
func (s *Store) DeleteTask(taskID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkTask(taskID); err != nil {
		return err
	}

	if err := s.taskService.DeleteTask(taskID); err != nil {
		return err
	}

	view, ok := s.tasks[taskID]
	if !ok {
		return nil
	}
	delete(s.tasks, taskID)

	if column, ok := s.statuses[view.StatusID]; ok {
		column.TaskIDs = removeID(column.TaskIDs, taskID)
	}
	if view.MilestoneID != nil {
		if mv, ok := s.milestones[*view.MilestoneID]; ok {
			delete(mv.TaskIDs, taskID)
		}
	}

	return nil
}

// AssignMilestone sets or clears a task's milestone and moves the task id
// between milestone sets accordingly.
func (s *Store) AssignMilestone(taskID uint64, milestoneID *uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkTask(taskID); err != nil {
		return err
	}
	if milestoneID != nil {
		if err := s.checkMilestone(*milestoneID); err != nil {
			return err
		}
	}

	task, err := s.milestoneService.AssignMilestone(milestoneID, taskID)
	if err != nil {
		return err
	}

	view, ok := s.tasks[task.ID]
	if !ok {
		return nil
	}

	if view.MilestoneID != nil {
		if old, ok := s.milestones[*view.MilestoneID]; ok {
			delete(old.TaskIDs, task.ID)
		}
	}

	view.MilestoneID = task.MilestoneID

	if task.MilestoneID != nil {
		if mv, ok := s.milestones[*task.MilestoneID]; ok {
			mv.TaskIDs[task.ID] = struct{}{}
		}
	}

	return nil
}

// CreateMilestone creates a milestone and inserts it with an empty task set.
func (s *Store) CreateMilestone(name, description string) (MilestoneView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return MilestoneView{}, ErrNotLoaded
	}

	milestone, err := s.milestoneService.CreateMilestone(name, description, s.projectID)
	if err != nil {
		return MilestoneView{}, err
	}

	view := &MilestoneView{
		ID:          milestone.ID,
		Name:        milestone.Name,
		Description: milestone.Description,
		DueDate:     milestone.DueDate,
		TaskIDs:     map[uint64]struct{}{},
	}
	s.milestones[milestone.ID] = view

	return *view, nil
}

// DeleteMilestone deletes a milestone and, because the delete cascades to
// the milestone's tasks, drops those tasks from the task index and their
// columns' lists.
func (s *Store) DeleteMilestone(milestoneID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.checkMilestone(milestoneID); err != nil {
		return err
	}

	if err := s.milestoneService.DeleteMilestone(milestoneID); err != nil {
		return err
	}

	view, ok := s.milestones[milestoneID]
	if !ok {
		return nil
	}
	delete(s.milestones, milestoneID)

	for taskID := range view.TaskIDs {
		task, ok := s.tasks[taskID]
		if !ok {
			continue
		}
		delete(s.tasks, taskID)

		if column, ok := s.statuses[task.StatusID]; ok {
			column.TaskIDs = removeID(column.TaskIDs, taskID)
		}
	}

	return nil
}

// The check helpers reject ids outside the loaded project before any
// domain operation runs. The projection indexes double as the scope check:
// an id not in them either belongs to another project or is already gone,
// and answering 404 for both keeps other projects' ids unguessable. They
// also keep a cross-project task out of s.tasks, where it would have no
// column.

func (s *Store) checkTask(taskID uint64) error {
	if _, ok := s.tasks[taskID]; !ok {
		return &services.InvalidReferenceError{Kind: "task", ID: taskID}
	}
	return nil
}

func (s *Store) checkStatus(statusID uint64) error {
	if _, ok := s.statuses[statusID]; !ok {
		return &services.InvalidReferenceError{Kind: "status", ID: statusID}
	}
	return nil
}

func (s *Store) checkMilestone(milestoneID uint64) error {
	if _, ok := s.milestones[milestoneID]; !ok {
		return &services.InvalidReferenceError{Kind: "milestone", ID: milestoneID}
	}
	return nil
}

func newTaskView(task models.Task) *TaskView {
	return &TaskView{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		StatusID:    task.StatusID,
		MilestoneID: task.MilestoneID,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
	}
}

// removeID removes the first occurrence of id, preserving order. Linear
// scan is fine at kanban-column scale.
func removeID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
