package board

import "sort"

// MilestoneSnapshot is the render-ready form of a MilestoneView, with the
// task id set flattened to a sorted slice.
type MilestoneSnapshot struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DueDate     *int64   `json:"due_date"`
	TaskIDs     []uint64 `json:"task_ids"`
}

// Snapshot is a deep copy of the projection handed to the renderer. The
// renderer never mutates the store through it.
type Snapshot struct {
	ProjectID   uint64                       `json:"project_id"`
	ProjectName string                       `json:"project_name"`
	Tasks       map[uint64]TaskView          `json:"tasks"`
	Statuses    map[uint64]StatusView        `json:"statuses"`
	Milestones  map[uint64]MilestoneSnapshot `json:"milestones"`
}

// Snapshot returns a consistent copy of the current projection.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return Snapshot{}, ErrNotLoaded
	}

	snap := Snapshot{
		ProjectID:   s.projectID,
		ProjectName: s.projectName,
		Tasks:       make(map[uint64]TaskView, len(s.tasks)),
		Statuses:    make(map[uint64]StatusView, len(s.statuses)),
		Milestones:  make(map[uint64]MilestoneSnapshot, len(s.milestones)),
	}

	for id, task := range s.tasks {
		snap.Tasks[id] = *task
	}

	for id, status := range s.statuses {
		view := *status
		view.TaskIDs = append([]uint64{}, status.TaskIDs...)
		snap.Statuses[id] = view
	}

	for id, milestone := range s.milestones {
		taskIDs := make([]uint64, 0, len(milestone.TaskIDs))
		for taskID := range milestone.TaskIDs {
			taskIDs = append(taskIDs, taskID)
		}
		sort.Slice(taskIDs, func(i, j int) bool { return taskIDs[i] < taskIDs[j] })

		snap.Milestones[id] = MilestoneSnapshot{
			ID:          milestone.ID,
			Name:        milestone.Name,
			Description: milestone.Description,
			DueDate:     milestone.DueDate,
			TaskIDs:     taskIDs,
		}
	}

	return snap, nil
}
