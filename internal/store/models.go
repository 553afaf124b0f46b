package store

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// ChatMessage is a single transcript turn. Values are never mutated after
// they are appended to a Transcript.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// StagedFile is a locally selected document waiting to be uploaded.
type StagedFile struct {
	Name    string `json:"name"`
	Content []byte `json:"-"` // Raw payload, kept so a failed upload can be retried
}

func (f StagedFile) Size() int {
	return len(f.Content)
}

// Clone returns a copy that shares no memory with f.
func (f StagedFile) Clone() StagedFile {
	content := make([]byte, len(f.Content))
	copy(content, f.Content)
	return StagedFile{Name: f.Name, Content: content}
}
