// Package taskclient provides a client of the tasks REST API that authorizes
// with OAuth2 bearer tokens and recovers from claims challenges (step-up
// authentication) raised by the API.
//
// NewClient wires the identity application, the claims challenge store, the
// challenge handling transport and the tasks client from ClientOptions, which
// can be populated from CLI flags, a YAML file (LoadOptions) and TASKS_*
// environment variables.
//
// Example:
//
//	options, _ := taskclient.LoadOptions(ctx, "~/.tasks/config.yaml")
//	cli, _ := taskclient.NewClient(ctx, options)
//	defer cli.Close()
//	items, _ := cli.List(ctx)
package taskclient
