package cli

import "github.com/viant/taskclient"

// Options are the command line options.
type Options struct {
	ConfigURL string                   `short:"f" long:"file" description:"client options YAML URL" env:"TASKS_CONFIG_URL"`
	Output    string                   `short:"o" long:"output" description:"output format" choice:"json" choice:"yaml" default:"json"`
	Client    taskclient.ClientOptions `group:"client"`

	List       ListCommand       `command:"list" description:"list tasks"`
	Get        IDCommand         `command:"get" description:"get a task"`
	Create     TaskCommand       `command:"create" description:"create a task"`
	Update     UpdateCommand     `command:"update" description:"update a task"`
	Delete     IDCommand         `command:"delete" description:"delete a task"`
	Challenges ChallengesCommand `command:"challenges" description:"show or clear stored claims challenges"`
}

type ListCommand struct{}

type IDCommand struct {
	Args struct {
		ID string `positional-arg-name:"id" required:"yes"`
	} `positional-args:"yes"`
}

type TaskCommand struct {
	Description string `short:"d" long:"description" description:"task description" required:"yes"`
	Completed   bool   `long:"completed" description:"mark completed"`
}

type UpdateCommand struct {
	IDCommand
	TaskCommand
}

type ChallengesCommand struct {
	Clear bool `long:"clear" description:"remove all stored challenges"`
}
