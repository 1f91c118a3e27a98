package plan

// TaskType is the kind of file-level work a task describes.
type TaskType string

// Task type constants. Rename and move are reserved; the extractor never
// produces them.
const (
	TaskCreate TaskType = "create"
	TaskModify TaskType = "modify"
	TaskDelete TaskType = "delete"
	TaskRename TaskType = "rename"
	TaskMove   TaskType = "move"
)

// ChangeAction is the kind of edit a Change describes.
type ChangeAction string

// Change action constants
const (
	ActionAdd      ChangeAction = "add"
	ActionModify   ChangeAction = "modify"
	ActionDelete   ChangeAction = "delete"
	ActionReplace  ChangeAction = "replace"
	ActionRefactor ChangeAction = "refactor"
	ActionComment  ChangeAction = "comment"
)

// Task is a single file-level unit of planned work.
type Task struct {
	ID           string   `json:"id" validate:"required"`
	Type         TaskType `json:"type" validate:"oneof=create modify delete rename move"`
	File         string   `json:"file" validate:"required"`
	Description  string   `json:"description"`
	Reasoning    string   `json:"reasoning" validate:"max=200"`
	Changes      []Change `json:"changes" validate:"dive"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Change is an individual edit inside a task. Only used as verification
// evidence.
type Change struct {
	Location    string       `json:"location"`
	Action      ChangeAction `json:"action" validate:"oneof=add modify delete replace refactor comment"`
	Description string       `json:"description"`
	Code        string       `json:"code,omitempty"`
	Rationale   string       `json:"rationale"`
}
