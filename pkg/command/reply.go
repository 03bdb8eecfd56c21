package command

import "fmt"

// Level selects how a reply is presented (embed color, CLI color).
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// MaxFields is the most fields a reply carries; chat embeds allow 25.
const MaxFields = 25

// Field is one name/value pair of a reply.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// File is an attachment sent with a reply.
type File struct {
	Name    string
	Content []byte
}

// Reply is the transport-neutral result of a command.
type Reply struct {
	Title       string
	Description string
	Fields      []Field
	Level       Level
	Footer      string
	Files       []File
	Ephemeral   bool
}

// Success creates a success reply
func Success(title, description string) *Reply {
	return &Reply{Title: title, Description: description, Level: LevelSuccess}
}

// Info creates an informational reply
func Info(title, description string) *Reply {
	return &Reply{Title: title, Description: description, Level: LevelInfo}
}

// Warning creates a warning reply
func Warning(title, description string) *Reply {
	return &Reply{Title: title, Description: description, Level: LevelWarning}
}

// Failure creates an error reply. Error replies are only shown to the caller.
func Failure(title, description string) *Reply {
	return &Reply{Title: title, Description: description, Level: LevelError, Ephemeral: true}
}

// AddField appends a field. Once MaxFields is reached further fields are
// dropped; use Truncated to note it in the footer.
func (r *Reply) AddField(name, value string, inline bool) *Reply {
	if len(r.Fields) >= MaxFields {
		return r
	}
	if value == "" {
		value = "-"
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value, Inline: inline})
	return r
}

// Truncated sets a "Showing n of total" footer when total exceeds what fits.
func (r *Reply) Truncated(total int) *Reply {
	if total > len(r.Fields) {
		r.Footer = fmt.Sprintf("Showing %d of %d", len(r.Fields), total)
	}
	return r
}

// Attach adds a file attachment.
func (r *Reply) Attach(name string, content []byte) *Reply {
	r.Files = append(r.Files, File{Name: name, Content: content})
	return r
}
