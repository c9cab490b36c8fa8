package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/flowcanvas/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("flowcanvas", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
flowcanvas - inspect, lay out and map node-graph workflows.

Usage:
  flowcanvas [options] [WORKFLOW_PATH]

Arguments:
  WORKFLOW_PATH
    Path to a wire-format workflow JSON file.

Options:
`)
		flagSet.PrintDefaults()
	}

	workflowFlag := flagSet.String("workflow", "", "Path to the workflow JSON file.")
	wFlag := flagSet.String("w", "", "Path to the workflow JSON file (shorthand).")
	catalogFlag := flagSet.String("catalog", "", "Path to a local node type catalog dump (object-info JSON).")
	serverFlag := flagSet.String("server", "", "Execution server base URL, e.g. http://127.0.0.1:8188.")
	schemasFlag := flagSet.String("schemas-path", "", "Directory of field schema manifests overriding the embedded set.")
	categoryFlag := flagSet.String("category", "text_to_image", "Workflow category whose field schema drives mapping.")
	outFlag := flagSet.String("out", "", "Re-serialize the workflow to this path ('-' for stdout).")
	checkFlag := flagSet.Bool("check-types", false, "Verify the graph's node types against the server catalog.")
	queueFlag := flagSet.Bool("queue", false, "Submit the workflow to the server's prompt queue.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *workflowFlag != "" {
		path = *workflowFlag
	} else if *wFlag != "" {
		path = *wFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		WorkflowPath: path,
		CatalogPath:  *catalogFlag,
		ServerURL:    *serverFlag,
		SchemasPath:  *schemasFlag,
		Category:     *categoryFlag,
		OutPath:      *outFlag,
		CheckTypes:   *checkFlag,
		Queue:        *queueFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
