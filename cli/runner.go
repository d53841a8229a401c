package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/viant/taskclient"
	"github.com/viant/taskclient/client/tasks"
	"gopkg.in/yaml.v3"
)

// Runner executes command lines.
type Runner struct {
	out io.Writer
	// Configure adjusts the client options before the client is created.
	Configure func(options *taskclient.ClientOptions)
}

// New creates a runner writing results to out.
func New(out io.Writer) *Runner {
	return &Runner{out: out}
}

func Run(args []string) error {
	return New(os.Stdout).Run(context.Background(), args)
}

// Run parses args and executes the selected command. Options are layered: the
// YAML file, then TASKS_* environment variables, then flags.
func (r *Runner) Run(ctx context.Context, args []string) error {
	options, command, err := r.parse(ctx, args)
	if err != nil {
		return err
	}
	if r.Configure != nil {
		r.Configure(&options.Client)
	}
	cli, err := taskclient.NewClient(ctx, &options.Client)
	if err != nil {
		return err
	}
	defer cli.Close()

	var result interface{}
	switch command {
	case "challenges":
		result, err = r.challenges(ctx, cli, &options.Challenges)
	default:
		if _, err = cli.SignIn(ctx); err != nil {
			return err
		}
		result, err = r.tasks(ctx, cli, command, options)
	}
	if err != nil {
		return err
	}
	return r.write(options.Output, result)
}

func (r *Runner) parse(ctx context.Context, args []string) (*Options, string, error) {
	bootstrap := &Options{}
	if _, err := flags.NewParser(bootstrap, flags.IgnoreUnknown).ParseArgs(args); err != nil {
		return nil, "", err
	}
	client, err := taskclient.LoadOptions(ctx, bootstrap.ConfigURL)
	if err != nil {
		return nil, "", err
	}
	options := &Options{Client: *client}
	parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
	if _, err = parser.ParseArgs(args); err != nil {
		return nil, "", err
	}
	if parser.Active == nil {
		return nil, "", fmt.Errorf("command was empty")
	}
	return options, parser.Active.Name, nil
}

func (r *Runner) tasks(ctx context.Context, cli *taskclient.Client, command string, options *Options) (interface{}, error) {
	switch command {
	case "list":
		return cli.List(ctx)
	case "get":
		return cli.Get(ctx, options.Get.Args.ID)
	case "create":
		return cli.Create(ctx, &tasks.Task{Description: options.Create.Description, Completed: options.Create.Completed})
	case "update":
		update := options.Update
		return cli.Update(ctx, update.Args.ID, &tasks.Task{Description: update.Description, Completed: update.Completed})
	case "delete":
		return cli.Delete(ctx, options.Delete.Args.ID)
	}
	return nil, fmt.Errorf("unsupported command: %v", command)
}

func (r *Runner) challenges(ctx context.Context, cli *taskclient.Client, command *ChallengesCommand) (interface{}, error) {
	if command.Clear {
		if err := cli.Store().Clear(ctx); err != nil {
			return nil, err
		}
	}
	return cli.Store().List(ctx)
}

func (r *Runner) write(format string, result interface{}) error {
	var data []byte
	var err error
	switch format {
	case "yaml":
		data, err = yaml.Marshal(result)
	default:
		if data, err = json.MarshalIndent(result, "", "  "); err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return err
	}
	_, err = r.out.Write(data)
	return err
}
